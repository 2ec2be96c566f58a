package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

type CategoryService struct {
	base
	Repo *repo.GormRepo
}

func NewCategoryService(r *repo.GormRepo, pub events.Publisher) *CategoryService {
	return &CategoryService{base: base{Events: pub}, Repo: r}
}

func validateCategory(req transport.CategoryRequest) error {
	f := fieldErrors{}
	required(f, "name", req.Name, "name")
	return f.err()
}

func (s *CategoryService) List(ctx context.Context, p util.ListParams) ([]models.Category, int64, error) {
	return s.Repo.ListCategories(ctx, p)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	return c, storeErr(err, "category")
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}
	c := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.Repo.CreateCategory(ctx, &c); err != nil {
		return nil, storeErr(err, "category")
	}
	s.publish(ctx, events.CategoryCreated, c.ID.String(), c)
	return &c, nil
}

// Update renames products along with the category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (*models.Category, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	oldName := c.Name
	c.Name = strings.TrimSpace(req.Name)
	c.Description = strings.TrimSpace(req.Description)
	moved, err := s.Repo.UpdateCategory(ctx, c, oldName)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	s.publish(ctx, events.CategoryUpdated, c.ID.String(), c)
	// renamed products must reach the search index and stock cache
	for _, p := range moved {
		s.publish(ctx, events.ProductUpdated, p.ID.String(), p)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return storeErr(err, "category")
	}
	s.publish(ctx, events.CategoryDeleted, id.String(), nil)
	return nil
}

type ProductService struct {
	base
	Repo *repo.GormRepo
}

func NewProductService(r *repo.GormRepo, pub events.Publisher) *ProductService {
	return &ProductService{base: base{Events: pub}, Repo: r}
}

type ProductRow struct {
	ID              string  `csv:"id"`
	Name            string  `csv:"name"`
	Category        string  `csv:"category"`
	Type            string  `csv:"type"`
	GSM             float64 `csv:"gsm"`
	Width           float64 `csv:"width"`
	Length          float64 `csv:"length"`
	SheetsPerBundle int     `csv:"sheets_per_bundle"`
	Weight          float64 `csv:"weight"`
}

// productFromRequest validates req and fills p. The category must exist.
func (s *ProductService) productFromRequest(ctx context.Context, req transport.ProductRequest, p *models.Product) error {
	f := fieldErrors{}
	required(f, "name", req.Name, "name")
	required(f, "category", req.Category, "category")
	required(f, "type", req.Type, "type")
	typ := strings.ToLower(strings.TrimSpace(req.Type))
	if typ != "" && !models.ValidProductType(typ) {
		f.add("type", "type must be reel or bundle")
	}
	gsm := number(f, "gsm", req.GSM, "gsm", true, true)
	width := number(f, "width", req.Width, "width", false, false)
	length := number(f, "length", req.Length, "length", false, false)
	sheets := number(f, "sheets_per_bundle", req.SheetsPerBundle, "sheets per bundle", false, false)
	if sheets != math.Trunc(sheets) {
		f.add("sheets_per_bundle", "sheets per bundle must be a whole number")
	}

	var category string
	if name := strings.TrimSpace(req.Category); name != "" {
		c, err := s.Repo.GetCategoryByName(ctx, name)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			f.add("category", "unknown category")
		case err != nil:
			return err
		default:
			category = c.Name
		}
	}
	if err := f.err(); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Category = category
	p.Type = typ
	p.GSM = gsm
	p.Width = width
	p.Length = length
	p.SheetsPerBundle = int(sheets)
	return nil
}

func (s *ProductService) List(ctx context.Context, p util.ListParams) ([]models.Product, int64, error) {
	return s.Repo.ListProducts(ctx, p)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	return p, storeErr(err, "product")
}

func (s *ProductService) Create(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	var p models.Product
	if err := s.productFromRequest(ctx, req, &p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, storeErr(err, "product")
	}
	s.publish(ctx, events.ProductCreated, p.ID.String(), p)
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req transport.ProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	if err := s.productFromRequest(ctx, req, p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		return nil, storeErr(err, "product")
	}
	s.publish(ctx, events.ProductUpdated, p.ID.String(), p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}
	s.publish(ctx, events.ProductDeleted, id.String(), nil)
	return nil
}

func (s *ProductService) Export(ctx context.Context, p util.ListParams) ([]ProductRow, error) {
	items, err := s.Repo.AllProducts(ctx, p)
	if err != nil {
		return nil, err
	}
	rows := make([]ProductRow, len(items))
	for i, it := range items {
		rows[i] = ProductRow{
			ID:              it.ID.String(),
			Name:            it.Name,
			Category:        it.Category,
			Type:            it.Type,
			GSM:             it.GSM,
			Width:           it.Width,
			Length:          it.Length,
			SheetsPerBundle: it.SheetsPerBundle,
			Weight:          it.Weight,
		}
	}
	return rows, nil
}
