package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/transport"
	"github.com/Skotchmaster/paperman/internal/util"
)

type InventoryService struct {
	base
	Repo *repo.GormRepo
	Loc  *time.Location
}

func NewInventoryService(r *repo.GormRepo, pub events.Publisher, loc *time.Location) *InventoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryService{base: base{Events: pub}, Repo: r, Loc: loc}
}

type InventoryRow struct {
	ID        string `csv:"id"`
	ProductID string `csv:"product_id"`
	Product   string `csv:"product"`
	Quantity  int    `csv:"quantity"`
	Date      string `csv:"date"`
	Remarks   string `csv:"remarks"`
	Status    string `csv:"status"`
}

func (s *InventoryService) fromRequest(ctx context.Context, req transport.InventoryRequest, inv *models.Inventory) error {
	f := fieldErrors{}
	productID := parseID(f, "product_id", req.ProductID)
	qty := number(f, "quantity", req.Quantity, "quantity", true, false)
	if qty != math.Trunc(qty) {
		f.add("quantity", "quantity must be a whole number")
	}
	var date time.Time
	if strings.TrimSpace(req.Date) == "" {
		f.add("date", "date is required")
	} else if d, err := util.ParseDate(req.Date, s.Loc); err != nil {
		f.add("date", "invalid date")
	} else {
		date = d
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		f.add("status", "status is required")
	} else if !models.ValidInventoryStatus(status) {
		f.add("status", "status must be active or inactive")
	}
	if productID != uuid.Nil {
		_, err := s.Repo.GetProduct(ctx, productID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			f.add("product_id", "unknown product")
		case err != nil:
			return err
		}
	}
	if err := f.err(); err != nil {
		return err
	}

	inv.ProductID = productID
	inv.Quantity = int(qty)
	inv.Date = date
	inv.Remarks = strings.TrimSpace(req.Remarks)
	inv.Status = status
	return nil
}

func (s *InventoryService) List(ctx context.Context, p util.ListParams) ([]models.Inventory, int64, error) {
	return s.Repo.ListInventory(ctx, p)
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	inv, err := s.Repo.GetInventory(ctx, id)
	return inv, storeErr(err, "inventory")
}

func (s *InventoryService) Create(ctx context.Context, req transport.InventoryRequest) (*models.Inventory, error) {
	var inv models.Inventory
	if err := s.fromRequest(ctx, req, &inv); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateInventory(ctx, &inv); err != nil {
		return nil, storeErr(err, "inventory")
	}
	s.publish(ctx, events.InventoryCreated, inv.ID.String(), inv)
	return &inv, nil
}

func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req transport.InventoryRequest) (*models.Inventory, error) {
	inv, err := s.Repo.GetInventory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "inventory")
	}
	if err := s.fromRequest(ctx, req, inv); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateInventory(ctx, inv); err != nil {
		return nil, storeErr(err, "inventory")
	}
	s.publish(ctx, events.InventoryUpdated, inv.ID.String(), inv)
	return inv, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteInventory(ctx, id); err != nil {
		return storeErr(err, "inventory")
	}
	s.publish(ctx, events.InventoryDeleted, id.String(), nil)
	return nil
}

// Export resolves product names for the rows.
func (s *InventoryService) Export(ctx context.Context, p util.ListParams) ([]InventoryRow, error) {
	items, err := s.Repo.AllInventory(ctx, p)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	rows := make([]InventoryRow, len(items))
	for i, it := range items {
		rows[i] = InventoryRow{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Product:   names[it.ProductID],
			Quantity:  it.Quantity,
			Date:      it.Date.In(s.Loc).Format("2006-01-02"),
			Remarks:   it.Remarks,
			Status:    it.Status,
		}
	}
	return rows, nil
}
