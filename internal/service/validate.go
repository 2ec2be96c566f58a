package service

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/pkg/hash"
)

var (
	phoneRe  = regexp.MustCompile(`^[0-9]{10}$`)
	aadharRe = regexp.MustCompile(`^[0-9]{12}$`)
	panRe    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

func required(f fieldErrors, field, value, label string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, label+" is required")
	}
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && strings.Contains(s, "@")
}

func checkEmail(f fieldErrors, field, value string) {
	if value != "" && !validEmail(value) {
		f.add(field, "invalid email address")
	}
}

func checkPhone(f fieldErrors, field, value string) {
	if value != "" && !phoneRe.MatchString(value) {
		f.add(field, "phone must be 10 digits")
	}
}

func checkPassword(f fieldErrors, pw string) {
	if len(pw) < hash.MinPasswordLength {
		f.add("password", "password must be at least 8 characters")
	}
}

// number validates a loosely typed numeric field and returns its value.
func number(f fieldErrors, field string, n transport.Number, label string, isRequired, positive bool) float64 {
	switch {
	case !n.Set:
		if isRequired {
			f.add(field, label+" is required")
		}
		return 0
	case !n.Valid:
		f.add(field, label+" must be a number")
		return 0
	case positive && n.Value <= 0:
		f.add(field, label+" must be positive")
	case n.Value < 0:
		f.add(field, label+" must not be negative")
	}
	return n.Value
}

func parseID(f fieldErrors, field, s string) uuid.UUID {
	if strings.TrimSpace(s) == "" {
		f.add(field, field+" is required")
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		f.add(field, "invalid id")
		return uuid.Nil
	}
	return id
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
