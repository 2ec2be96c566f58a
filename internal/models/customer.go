package models

type Customer struct {
	Base
	FirstName   string     `gorm:"not null"     json:"first_name"`
	LastName    string     `json:"last_name"`
	CompanyName string     `gorm:"index"        json:"company_name"`
	Phone       string     `json:"phone"`
	Email       string     `gorm:"uniqueIndex"  json:"email"`
	GSTNumber   string     `json:"gst_number"`
	Address     string     `json:"address"`
	Enquiries   StringList `gorm:"type:text"    json:"enquiries"`
	Orders      StringList `gorm:"type:text"    json:"orders"`
}
