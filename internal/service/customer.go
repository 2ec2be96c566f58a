package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

type CustomerService struct {
	base
	Repo *repo.GormRepo
}

func NewCustomerService(r *repo.GormRepo, pub events.Publisher) *CustomerService {
	return &CustomerService{base: base{Events: pub}, Repo: r}
}

type CustomerRow struct {
	ID          string `csv:"id"`
	FirstName   string `csv:"first_name"`
	LastName    string `csv:"last_name"`
	CompanyName string `csv:"company_name"`
	Phone       string `csv:"phone"`
	Email       string `csv:"email"`
	GSTNumber   string `csv:"gst_number"`
	Address     string `csv:"address"`
	Enquiries   int    `csv:"enquiries"`
	Orders      int    `csv:"orders"`
}

func validateCustomer(req transport.CustomerRequest) error {
	f := fieldErrors{}
	required(f, "first_name", req.FirstName, "first name")
	required(f, "phone", req.Phone, "phone")
	required(f, "email", req.Email, "email")
	checkEmail(f, "email", normEmail(req.Email))
	return f.err()
}

func applyCustomer(c *models.Customer, req transport.CustomerRequest) {
	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.CompanyName = strings.TrimSpace(req.CompanyName)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Email = normEmail(req.Email)
	c.GSTNumber = strings.ToUpper(strings.TrimSpace(req.GSTNumber))
	c.Address = strings.TrimSpace(req.Address)
	if req.Orders != nil {
		c.Orders = models.StringList(req.Orders)
	}
}

func (s *CustomerService) List(ctx context.Context, p util.ListParams) ([]models.Customer, int64, error) {
	return s.Repo.ListCustomers(ctx, p)
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := s.Repo.GetCustomer(ctx, id)
	return c, storeErr(err, "customer")
}

func (s *CustomerService) Create(ctx context.Context, req transport.CustomerRequest) (*models.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	c := models.Customer{Enquiries: models.StringList{}, Orders: models.StringList{}}
	applyCustomer(&c, req)
	if err := s.Repo.CreateCustomer(ctx, &c); err != nil {
		return nil, storeErr(err, "customer")
	}
	s.publish(ctx, events.CustomerCreated, c.ID.String(), c)
	return &c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req transport.CustomerRequest) (*models.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	c, err := s.Repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, storeErr(err, "customer")
	}
	applyCustomer(c, req)
	if err := s.Repo.UpdateCustomer(ctx, c); err != nil {
		return nil, storeErr(err, "customer")
	}
	s.publish(ctx, events.CustomerUpdated, c.ID.String(), c)
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteCustomer(ctx, id); err != nil {
		return storeErr(err, "customer")
	}
	s.publish(ctx, events.CustomerDeleted, id.String(), nil)
	return nil
}

func (s *CustomerService) Leads(ctx context.Context, id uuid.UUID) ([]models.Lead, error) {
	if _, err := s.Repo.GetCustomer(ctx, id); err != nil {
		return nil, storeErr(err, "customer")
	}
	return s.Repo.LeadsForCustomer(ctx, id)
}

func (s *CustomerService) Export(ctx context.Context, p util.ListParams) ([]CustomerRow, error) {
	items, err := s.Repo.AllCustomers(ctx, p)
	if err != nil {
		return nil, err
	}
	rows := make([]CustomerRow, len(items))
	for i, c := range items {
		rows[i] = CustomerRow{
			ID:          c.ID.String(),
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			CompanyName: c.CompanyName,
			Phone:       c.Phone,
			Email:       c.Email,
			GSTNumber:   c.GSTNumber,
			Address:     c.Address,
			Enquiries:   len(c.Enquiries),
			Orders:      len(c.Orders),
		}
	}
	return rows, nil
}
