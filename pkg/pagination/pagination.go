package pagination

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
	Sort  string
}

// Meta is the pagination block returned with every list.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// Page is the list envelope payload.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize clamps page to 1-based and limit to the allowed range.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	p.Sort = strings.ToLower(strings.TrimSpace(p.Sort))
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Scope applies limit/offset to a query.
func (p Params) Scope(tx *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return tx.Limit(n.Limit).Offset(n.Offset())
}

// NewMeta computes the page count for total rows.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Meta{Total: total, Page: n.Page, Pages: pages, Limit: n.Limit}
}

// NewPage wraps items with their pagination block. Nil slices render as [].
func NewPage[T any](items []T, p Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: NewMeta(p, total)}
}

// Map converts a page of one item type into another.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[U]{Items: out, Pagination: in.Pagination}
}

// SortTable maps public sort keys to fixed ORDER BY clauses. Keys never reach
// SQL directly.
type SortTable struct {
	Default string
	Orders  map[string]string
}

// Resolve returns the ORDER BY clause for key, falling back to the default
// when key is empty. Unknown keys are an error.
func (s SortTable) Resolve(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		key = s.Default
	}
	order, ok := s.Orders[key]
	if !ok {
		return "", fmt.Errorf("unsupported sort %q", key)
	}
	return order, nil
}

// Keys lists the accepted sort keys, default first and the rest sorted.
func (s SortTable) Keys() []string {
	rest := make([]string, 0, len(s.Orders))
	for k := range s.Orders {
		if k != s.Default {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append([]string{s.Default}, rest...)
}
