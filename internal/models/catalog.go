package models

import (
	"math"

	"gorm.io/gorm"
)

const (
	ProductTypeReel   = "reel"
	ProductTypeBundle = "bundle"
)

type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

// Product.Category holds the category name. Width is in millimetres; Length
// is metres for reels and millimetres for bundle sheets.
type Product struct {
	Base
	Name            string  `gorm:"index;not null"           json:"name"`
	Category        string  `gorm:"index;not null"           json:"category"`
	Type            string  `gorm:"size:16;index;not null"   json:"type"`
	GSM             float64 `gorm:"not null"                 json:"gsm"`
	Width           float64 `json:"width"`
	Length          float64 `json:"length"`
	SheetsPerBundle int     `json:"sheets_per_bundle"`
	Weight          float64 `gorm:"-"                        json:"weight"`
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Weight = p.ComputeWeight()
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.Weight = p.ComputeWeight()
	return nil
}

func (p *Product) ComputeWeight() float64 {
	return Weight(p.Type, p.GSM, p.Width, p.Length, p.SheetsPerBundle)
}

// Weight returns kilograms rounded to grams, or 0 when a dimension is missing.
func Weight(productType string, gsm, widthMM, length float64, sheets int) float64 {
	if gsm <= 0 || widthMM <= 0 || length <= 0 {
		return 0
	}
	var kg float64
	switch productType {
	case ProductTypeReel:
		kg = length * (widthMM / 1000) * gsm / 1000
	case ProductTypeBundle:
		if sheets <= 0 {
			return 0
		}
		kg = (length / 1000) * (widthMM / 1000) * gsm * float64(sheets) / 1000
	default:
		return 0
	}
	return math.Round(kg*1000) / 1000
}

func ValidProductType(t string) bool {
	return t == ProductTypeReel || t == ProductTypeBundle
}
