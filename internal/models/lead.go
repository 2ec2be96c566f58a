package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	LeadOpen      = "open"
	LeadConverted = "converted"
	LeadClosed    = "closed"
)

const (
	LeadKindEnquiry = "enquiry"
	LeadKindQuote   = "quote"
)

type Lead struct {
	Base
	Reference  string     `gorm:"uniqueIndex;not null"    json:"reference"`
	Kind       string     `gorm:"size:16;not null"        json:"kind"`
	Name       string     `gorm:"not null"                json:"name"`
	Email      string     `gorm:"index;not null"          json:"email"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	Message    string     `json:"message"`
	Status     string     `gorm:"size:16;index;not null"  json:"status"`
	Quote      Quote      `gorm:"type:text"               json:"quote"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"         json:"customer_id,omitempty"`
}

type Quote struct {
	Items []QuoteItem `json:"items"`
}

type QuoteItem struct {
	Product  QuoteProduct `json:"product"`
	Weight   float64      `json:"weight"`
	Quantity float64      `json:"quantity"`
}

type QuoteProduct struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
}

func (q Quote) Value() (driver.Value, error) {
	if q.Items == nil {
		q.Items = []QuoteItem{}
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (q *Quote) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*q = Quote{Items: []QuoteItem{}}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("quote: unsupported source %T", src)
	}
	var out Quote
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	if out.Items == nil {
		out.Items = []QuoteItem{}
	}
	*q = out
	return nil
}

func ValidLeadStatus(s string) bool {
	return s == LeadOpen || s == LeadConverted || s == LeadClosed
}
