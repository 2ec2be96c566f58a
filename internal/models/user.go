package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	Base
	Username     string     `gorm:"uniqueIndex;not null"    json:"username"`
	FirstName    string     `gorm:"not null"                json:"first_name"`
	LastName     string     `gorm:"not null"                json:"last_name"`
	DOB          *time.Time `json:"dob,omitempty"`
	Phone        string     `json:"phone"`
	Email        string     `gorm:"uniqueIndex;not null"    json:"email"`
	AadharNo     string     `json:"aadhar_no"`
	PanNo        string     `json:"pan_no"`
	Role         string     `gorm:"size:16;not null"        json:"role"`
	PasswordHash string     `json:"-"`
	Age          int        `gorm:"-"                       json:"age"`
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.Age = u.AgeAt(time.Now())
	return nil
}

func (u *User) AfterSave(tx *gorm.DB) error {
	u.Age = u.AgeAt(time.Now())
	return nil
}

// AgeAt returns completed years at now, 0 without a DOB.
func (u *User) AgeAt(now time.Time) int {
	if u.DOB == nil {
		return 0
	}
	dob := u.DOB.In(now.Location())
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"    json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null"    json:"jti"`
	ExpiresAt int64     `gorm:"index;not null"          json:"expires_at"`
	Revoked   bool      `gorm:"default:false"           json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
