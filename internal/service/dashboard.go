package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Skotchmaster/paperman/internal/models"
	"github.com/Skotchmaster/paperman/internal/repo"
)

// MonthLabel formats months the way the dashboard charts show them.
const MonthLabel = "Jan 06"

type MonthPoint struct {
	Month     string `json:"month"`
	Enquiries int    `json:"enquiries"`
	Customers int    `json:"customers"`
	Products  int    `json:"products"`
}

type InventoryStats struct {
	Records int     `json:"records"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
}

type Dashboard struct {
	Counts              repo.EntityCounts `json:"counts"`
	ProductsPerCategory []repo.GroupCount `json:"products_per_category"`
	EnquiryStatus       []repo.GroupCount `json:"enquiry_status"`
	InventoryStatus     []repo.GroupCount `json:"inventory_status"`
	Monthly             []MonthPoint      `json:"monthly"`
	Inventory           InventoryStats    `json:"inventory_stats"`
}

type DashboardService struct {
	Repo *repo.GormRepo
	Loc  *time.Location
}

func NewDashboardService(r *repo.GormRepo, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{Repo: r, Loc: loc}
}

// Build gathers every dashboard figure. A zero since includes all history in
// the monthly series.
func (s *DashboardService) Build(ctx context.Context, since time.Time) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Counts, err = s.Repo.CountEntities(ctx); err != nil {
		return nil, err
	}
	if d.ProductsPerCategory, err = s.Repo.ProductsPerCategory(ctx); err != nil {
		return nil, err
	}
	if d.EnquiryStatus, err = s.Repo.LeadsPerStatus(ctx); err != nil {
		return nil, err
	}
	if d.InventoryStatus, err = s.Repo.InventoryPerStatus(ctx); err != nil {
		return nil, err
	}

	enquiries, err := s.Repo.CreatedSince(ctx, &models.Lead{}, since)
	if err != nil {
		return nil, err
	}
	customers, err := s.Repo.CreatedSince(ctx, &models.Customer{}, since)
	if err != nil {
		return nil, err
	}
	products, err := s.Repo.CreatedSince(ctx, &models.Product{}, since)
	if err != nil {
		return nil, err
	}
	d.Monthly = MonthlySeries(s.Loc, enquiries, customers, products)

	qty, err := s.Repo.ActiveInventoryQuantities(ctx)
	if err != nil {
		return nil, err
	}
	d.Inventory = Summarize(qty)
	return &d, nil
}

// MonthlySeries buckets creation times per calendar month in loc, ordered
// chronologically. Only months with at least one record appear.
func MonthlySeries(loc *time.Location, enquiries, customers, products []time.Time) []MonthPoint {
	type bucket struct {
		start time.Time
		point MonthPoint
	}
	buckets := map[string]*bucket{}
	add := func(ts []time.Time, inc func(*MonthPoint)) {
		for _, t := range ts {
			t = t.In(loc)
			label := t.Format(MonthLabel)
			b, ok := buckets[label]
			if !ok {
				b = &bucket{
					start: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc),
					point: MonthPoint{Month: label},
				}
				buckets[label] = b
			}
			inc(&b.point)
		}
	}
	add(enquiries, func(p *MonthPoint) { p.Enquiries++ })
	add(customers, func(p *MonthPoint) { p.Customers++ })
	add(products, func(p *MonthPoint) { p.Products++ })

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })

	out := make([]MonthPoint, len(ordered))
	for i, b := range ordered {
		out[i] = b.point
	}
	return out
}

// Summarize returns zeros for an empty input.
func Summarize(values []float64) InventoryStats {
	if len(values) == 0 {
		return InventoryStats{}
	}
	data := stats.Float64Data(values)
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	maxV, _ := stats.Max(data)
	return InventoryStats{
		Records: len(values),
		Sum:     sum,
		Mean:    round2(mean),
		Median:  median,
		Max:     maxV,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
