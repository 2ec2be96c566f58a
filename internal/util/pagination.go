package util

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSort     = "created_at"
	// MaxPage keeps (page-1)*size well inside int range.
	MaxPage = 1_000_000
)

// ParseIntDefault parses a base-10 integer, returning def when s is empty or
// malformed.
func ParseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// Calculate clamps page and size and returns the row offset and limit.
func Calculate(page, size int) (offset int, limit int) {
	page = clampPage(page)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

func NewMeta(page, size int, total int64) Meta {
	offset, limit := Calculate(page, size)
	page = clampPage(page)
	return Meta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

type PageResponse[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPage[T any](items []T, p ListParams, total int64) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Data: items, Meta: NewMeta(p.Page, p.Size, total)}
}

// ListParams is the parsed table state of a list request.
type ListParams struct {
	Page    int
	Size    int
	Offset  int
	Sort    string
	Desc    bool
	Query   string
	Filters map[string]string
}

// ParseListParams reads page, size, sort, order, q and the given filter keys.
// sortable maps public sort names to columns; unknown names fall back to
// newest first.
func ParseListParams(q url.Values, sortable map[string]string, filterKeys ...string) ListParams {
	page := clampPage(ParseIntDefault(q.Get("page"), 1))
	offset, limit := Calculate(page, ParseIntDefault(q.Get("size"), DefaultPageSize))

	p := ListParams{
		Page:    page,
		Size:    limit,
		Offset:  offset,
		Sort:    DefaultSort,
		Desc:    true,
		Query:   strings.TrimSpace(q.Get("q")),
		Filters: map[string]string{},
	}
	if col, ok := sortable[strings.ToLower(q.Get("sort"))]; ok {
		p.Sort = col
		p.Desc = strings.EqualFold(q.Get("order"), "desc")
	}
	for _, k := range filterKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			p.Filters[k] = v
		}
	}
	return p
}

// OrderClause renders the sort column for gorm's Order.
func (p ListParams) OrderClause() string {
	if p.Desc {
		return p.Sort + " DESC"
	}
	return p.Sort + " ASC"
}
