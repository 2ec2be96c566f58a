package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

const (
	enquiryPrefix = "ENQ-"
	quotePrefix   = "QTE-"
)

type LeadService struct {
	base
	Repo *repo.GormRepo
	Node *snowflake.Node
}

func NewLeadService(r *repo.GormRepo, pub events.Publisher, node *snowflake.Node) *LeadService {
	return &LeadService{base: base{Events: pub}, Repo: r, Node: node}
}

type LeadRow struct {
	ID        string `csv:"id"`
	Reference string `csv:"reference"`
	Kind      string `csv:"kind"`
	Name      string `csv:"name"`
	Email     string `csv:"email"`
	Phone     string `csv:"phone"`
	Company   string `csv:"company"`
	Status    string `csv:"status"`
	Items     int    `csv:"items"`
	CreatedAt string `csv:"created_at"`
}

// ItemAvailability pairs a quote item with the largest active inventory
// record of its product.
type ItemAvailability struct {
	Item      models.QuoteItem  `json:"item"`
	Inventory *models.Inventory `json:"inventory"`
	Available bool              `json:"available"`
}

type quoteItemInput struct {
	Product struct {
		ID       string `mapstructure:"id"`
		LegacyID string `mapstructure:"_id"`
		Name     string `mapstructure:"name"`
		Type     string `mapstructure:"type"`
		Category string `mapstructure:"category"`
	} `mapstructure:"product"`
	ProductID string  `mapstructure:"product_id"`
	Weight    float64 `mapstructure:"weight"`
	Quantity  float64 `mapstructure:"quantity"`
}

func decodeQuoteItem(raw map[string]any) (quoteItemInput, error) {
	var in quoteItemInput
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &in,
	})
	if err != nil {
		return in, err
	}
	err = dec.Decode(raw)
	return in, err
}

// quoteItems decodes loosely typed items and fills product details from the
// catalog when an id is given.
func (s *LeadService) quoteItems(ctx context.Context, f fieldErrors, raw []map[string]any) ([]models.QuoteItem, error) {
	items := make([]models.QuoteItem, 0, len(raw))
	for i, r := range raw {
		field := fmt.Sprintf("items[%d]", i)
		in, err := decodeQuoteItem(r)
		if err != nil {
			f.add(field, "invalid item")
			continue
		}
		id := firstNonEmpty(in.ProductID, in.Product.ID, in.Product.LegacyID)
		item := models.QuoteItem{
			Product: models.QuoteProduct{
				ID:       id,
				Name:     strings.TrimSpace(in.Product.Name),
				Type:     in.Product.Type,
				Category: in.Product.Category,
			},
			Weight:   in.Weight,
			Quantity: in.Quantity,
		}
		if id != "" {
			pid, err := uuid.Parse(id)
			if err != nil {
				f.add(field, "invalid product id")
				continue
			}
			p, err := s.Repo.GetProduct(ctx, pid)
			if err != nil {
				if err := storeErr(err, "product"); !isNotFound(err) {
					return nil, err
				}
				f.add(field, "unknown product")
				continue
			}
			item.Product = models.QuoteProduct{ID: p.ID.String(), Name: p.Name, Type: p.Type, Category: p.Category}
			if item.Weight == 0 {
				item.Weight = p.Weight
			}
		}
		switch {
		case item.Product.Name == "":
			f.add(field, "product is required")
		case item.Quantity <= 0:
			f.add(field, "quantity must be positive")
		case item.Weight < 0:
			f.add(field, "weight must not be negative")
		}
		items = append(items, item)
	}
	return items, nil
}

func validateContact(f fieldErrors, req transport.EnquiryRequest) {
	required(f, "name", req.Name, "name")
	required(f, "email", req.Email, "email")
	required(f, "phone", req.Phone, "phone")
	checkEmail(f, "email", normEmail(req.Email))
}

func (s *LeadService) reference(prefix string) string {
	return prefix + s.Node.Generate().String()
}

func (s *LeadService) SubmitEnquiry(ctx context.Context, req transport.EnquiryRequest) (*models.Lead, error) {
	f := fieldErrors{}
	validateContact(f, req)
	if err := f.err(); err != nil {
		return nil, err
	}
	lead := newLead(req, models.LeadKindEnquiry, s.reference(enquiryPrefix))
	return s.create(ctx, lead)
}

func (s *LeadService) SubmitQuote(ctx context.Context, req transport.QuoteRequest) (*models.Lead, error) {
	f := fieldErrors{}
	validateContact(f, req.EnquiryRequest)
	if len(req.Items) == 0 {
		f.add("items", "at least one item is required")
	}
	items, err := s.quoteItems(ctx, f, req.Items)
	if err != nil {
		return nil, err
	}
	if err := f.err(); err != nil {
		return nil, err
	}
	lead := newLead(req.EnquiryRequest, models.LeadKindQuote, s.reference(quotePrefix))
	lead.Quote = models.Quote{Items: items}
	return s.create(ctx, lead)
}

func newLead(req transport.EnquiryRequest, kind, ref string) *models.Lead {
	return &models.Lead{
		Reference: ref,
		Kind:      kind,
		Name:      strings.TrimSpace(req.Name),
		Email:     normEmail(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Company:   strings.TrimSpace(req.Company),
		Message:   strings.TrimSpace(req.Message),
		Status:    models.LeadOpen,
		Quote:     models.Quote{Items: []models.QuoteItem{}},
	}
}

func (s *LeadService) create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	customer, created, err := s.Repo.CreateLeadWithCustomer(ctx, lead)
	if err != nil {
		return nil, storeErr(err, "lead")
	}
	if created {
		s.publish(ctx, events.CustomerCreated, customer.ID.String(), customer)
	} else {
		s.publish(ctx, events.CustomerUpdated, customer.ID.String(), customer)
	}
	s.publish(ctx, events.LeadCreated, lead.ID.String(), *lead)
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, p util.ListParams) ([]models.Lead, int64, error) {
	return s.Repo.ListLeads(ctx, p)
}

func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	l, err := s.Repo.GetLead(ctx, id)
	return l, storeErr(err, "lead")
}

// Update applies the fields present in req. Items, when sent, replace the
// quote.
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req transport.PatchLeadRequest) (*models.Lead, error) {
	lead, err := s.Repo.GetLead(ctx, id)
	if err != nil {
		return nil, storeErr(err, "lead")
	}

	f := fieldErrors{}
	if req.Name != nil {
		required(f, "name", *req.Name, "name")
		lead.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		required(f, "email", *req.Email, "email")
		checkEmail(f, "email", normEmail(*req.Email))
		lead.Email = normEmail(*req.Email)
	}
	if req.Phone != nil {
		required(f, "phone", *req.Phone, "phone")
		lead.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Company != nil {
		lead.Company = strings.TrimSpace(*req.Company)
	}
	if req.Message != nil {
		lead.Message = strings.TrimSpace(*req.Message)
	}
	if req.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*req.Status))
		if !models.ValidLeadStatus(status) {
			f.add("status", "status must be open, converted or closed")
		}
		lead.Status = status
	}
	if req.Items != nil {
		items, err := s.quoteItems(ctx, f, req.Items)
		if err != nil {
			return nil, err
		}
		lead.Quote = models.Quote{Items: items}
	}
	if err := f.err(); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateLead(ctx, lead); err != nil {
		return nil, storeErr(err, "lead")
	}
	s.publish(ctx, events.LeadUpdated, lead.ID.String(), *lead)
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteLead(ctx, id); err != nil {
		return storeErr(err, "lead")
	}
	s.publish(ctx, events.LeadDeleted, id.String(), nil)
	return nil
}

// Availability reports, per quote item, whether active stock covers the
// requested quantity.
func (s *LeadService) Availability(ctx context.Context, id uuid.UUID) ([]ItemAvailability, error) {
	lead, err := s.Repo.GetLead(ctx, id)
	if err != nil {
		return nil, storeErr(err, "lead")
	}

	var ids []uuid.UUID
	for _, it := range lead.Quote.Items {
		if pid, err := uuid.Parse(it.Product.ID); err == nil {
			ids = append(ids, pid)
		}
	}
	records, err := s.Repo.ActiveInventoryFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	best := make(map[string]models.Inventory, len(records))
	for _, inv := range records {
		if _, ok := best[inv.ProductID.String()]; !ok {
			best[inv.ProductID.String()] = inv
		}
	}

	out := make([]ItemAvailability, 0, len(lead.Quote.Items))
	for _, it := range lead.Quote.Items {
		a := ItemAvailability{Item: it}
		if inv, ok := best[it.Product.ID]; ok {
			a.Inventory = &inv
			a.Available = float64(inv.Quantity) >= it.Quantity
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *LeadService) Export(ctx context.Context, p util.ListParams) ([]LeadRow, error) {
	items, err := s.Repo.AllLeads(ctx, p)
	if err != nil {
		return nil, err
	}
	rows := make([]LeadRow, len(items))
	for i, l := range items {
		rows[i] = LeadRow{
			ID:        l.ID.String(),
			Reference: l.Reference,
			Kind:      l.Kind,
			Name:      l.Name,
			Email:     l.Email,
			Phone:     l.Phone,
			Company:   l.Company,
			Status:    l.Status,
			Items:     len(l.Quote.Items),
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return rows, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
