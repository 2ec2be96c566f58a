package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/util"
)

var (
	LeadSort = map[string]string{
		"name":       "name",
		"email":      "email",
		"company":    "company",
		"status":     "status",
		"reference":  "reference",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	leadSpec = listSpec{
		filters: map[string]string{"status": "status", "kind": "kind"},
		search:  []string{"name", "email", "phone", "company", "message", "reference"},
	}
)

// CreateLeadWithCustomer stores the lead and links it to the customer with
// the same email, creating the customer when none exists. The customer's
// enquiry list gets the lead id appended.
func (r *GormRepo) CreateLeadWithCustomer(ctx context.Context, lead *models.Lead) (*models.Customer, bool, error) {
	var (
		customer *models.Customer
		created  bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}

		c, err := customerByEmail(tx, lead.Email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			first, last := splitName(lead.Name)
			c = &models.Customer{
				FirstName:   first,
				LastName:    last,
				CompanyName: lead.Company,
				Phone:       lead.Phone,
				Email:       strings.ToLower(strings.TrimSpace(lead.Email)),
				Enquiries:   models.StringList{lead.ID.String()},
				Orders:      models.StringList{},
			}
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if !c.Enquiries.Contains(lead.ID.String()) {
				c.Enquiries = append(c.Enquiries, lead.ID.String())
			}
			if c.CompanyName == "" {
				c.CompanyName = lead.Company
			}
			if c.Phone == "" {
				c.Phone = lead.Phone
			}
			if err := tx.Save(c).Error; err != nil {
				return err
			}
		}

		lead.CustomerID = &c.ID
		if err := tx.Model(lead).Update("customer_id", c.ID).Error; err != nil {
			return err
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return customer, created, nil
}

func (r *GormRepo) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	return getByID[models.Lead](ctx, r.DB, id)
}

func (r *GormRepo) ListLeads(ctx context.Context, p util.ListParams) ([]models.Lead, int64, error) {
	return list[models.Lead](ctx, r.DB, p, leadSpec)
}

func (r *GormRepo) AllLeads(ctx context.Context, p util.ListParams) ([]models.Lead, error) {
	var items []models.Lead
	err := r.DB.WithContext(ctx).Scopes(leadSpec.scope(p)).Order(p.OrderClause()).Find(&items).Error
	return items, err
}

func (r *GormRepo) UpdateLead(ctx context.Context, lead *models.Lead) error {
	return r.DB.WithContext(ctx).Save(lead).Error
}

// DeleteLead also removes the lead id from its customer's enquiry list.
func (r *GormRepo) DeleteLead(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.Where("id = ?", id).First(&lead).Error; err != nil {
			return err
		}
		if lead.CustomerID != nil {
			var c models.Customer
			err := tx.Where("id = ?", *lead.CustomerID).First(&c).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				kept := make(models.StringList, 0, len(c.Enquiries))
				for _, e := range c.Enquiries {
					if e != id.String() {
						kept = append(kept, e)
					}
				}
				if err := tx.Model(&c).Update("enquiries", kept).Error; err != nil {
					return err
				}
			}
		}
		return deleteByID[models.Lead](tx, id)
	})
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
