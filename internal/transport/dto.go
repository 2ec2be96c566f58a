package transport

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Number accepts a JSON number or a numeric string. Set is false for a
// missing, null or blank value; Valid is false when the value did not parse.
type Number struct {
	Value float64
	Set   bool
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	n.Set = true
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func Num(v float64) Number { return Number{Value: v, Set: true, Valid: true} }

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Type            string `json:"type"`
	GSM             Number `json:"gsm"`
	Width           Number `json:"width"`
	Length          Number `json:"length"`
	SheetsPerBundle Number `json:"sheets_per_bundle"`
}

type InventoryRequest struct {
	ProductID string `json:"product_id"`
	Quantity  Number `json:"quantity"`
	Date      string `json:"date"`
	Remarks   string `json:"remarks"`
	Status    string `json:"status"`
}

type CustomerRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	CompanyName string   `json:"company_name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	GSTNumber   string   `json:"gst_number"`
	Address     string   `json:"address"`
	Orders      []string `json:"orders"`
}

type EnquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// QuoteRequest items are decoded loosely: quantities and weights may arrive
// as numbers or strings.
type QuoteRequest struct {
	EnquiryRequest
	Items []map[string]any `json:"items"`
}

type PatchLeadRequest struct {
	Name    *string          `json:"name"`
	Email   *string          `json:"email"`
	Phone   *string          `json:"phone"`
	Company *string          `json:"company"`
	Message *string          `json:"message"`
	Status  *string          `json:"status"`
	Items   []map[string]any `json:"items"`
}

type UserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	AadharNo  string `json:"aadhar_no"`
	PanNo     string `json:"pan_no"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
