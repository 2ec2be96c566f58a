package notify

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/paperman/internal/models"
)

func LeadMail(l models.Lead) (subject, body string) {
	var b strings.Builder
	if l.Kind == models.LeadKindQuote {
		subject = fmt.Sprintf("New quote request %s from %s", l.Reference, l.Name)
	} else {
		subject = fmt.Sprintf("New enquiry %s from %s", l.Reference, l.Name)
	}
	fmt.Fprintf(&b, "Reference: %s\n", l.Reference)
	fmt.Fprintf(&b, "Name: %s\n", l.Name)
	fmt.Fprintf(&b, "Email: %s\n", l.Email)
	fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	if l.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", l.Company)
	}
	if l.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", l.Message)
	}
	if len(l.Quote.Items) > 0 {
		b.WriteString("\nItems:\n")
		for _, it := range l.Quote.Items {
			fmt.Fprintf(&b, "- %s (%s, %s): qty %g, weight %g kg\n",
				it.Product.Name, it.Product.Category, it.Product.Type, it.Quantity, it.Weight)
		}
	}
	return subject, b.String()
}

type LowStockLine struct {
	Name     string
	Category string
	Quantity int
	Status   string
}

func LowStockMail(lines []LowStockLine, threshold int) (subject, body string) {
	subject = fmt.Sprintf("Low stock: %d products below %d", len(lines), threshold)
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s [%s]: %d (%s)\n", l.Name, l.Category, l.Quantity, l.Status)
	}
	return subject, b.String()
}
