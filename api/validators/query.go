package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/pagination"
)

const (
	maxSearchLen = 100
	maxPage      = 1 << 20
)

// queryError reports a bad query parameter with the same field→message details
// shape as body validation.
func queryError(key, msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").
		WithDetails(map[string]string{key: msg})
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// ParseQueryInt reads key as an integer in [min, max], or defaultVal when absent.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "must be a whole number")
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return value, nil
}

// ParsePagination reads page, limit and sort. Limits above the maximum are
// clamped rather than rejected.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, maxPage)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, maxPage)
	if err != nil {
		return pagination.Params{}, err
	}
	p := pagination.Params{
		Page:  page,
		Limit: limit,
		Sort:  queryValue(r, "sort"),
	}
	return p.Normalize(), nil
}

// SearchTerm returns the sanitized free-text query.
func SearchTerm(r *http.Request) string {
	return SanitizeString(r.URL.Query().Get("q"), maxSearchLen)
}

// ParseQueryEnum parses an optional enum query value with the supplied parser.
func ParseQueryEnum[T any](r *http.Request, key string, parse func(string) (T, error)) (*T, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, queryError(key, "is not a supported value")
	}
	return &v, nil
}

// ParseQueryOptionalInt returns nil when the parameter is absent.
func ParseQueryOptionalInt(r *http.Request, key string, min, max int) (*int, error) {
	if queryValue(r, key) == "" {
		return nil, nil
	}
	v, err := ParseQueryInt(r, key, 0, min, max)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, queryError(key, "must be true or false")
	}
	return &v, nil
}

// ParseQueryDecimal reads a non-negative amount such as fee_max.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		return nil, queryError(key, "must be a non-negative number")
	}
	return &v, nil
}
