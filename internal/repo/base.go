package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Base is embedded by domain repositories. It carries either the pooled
// connection or an open transaction.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a Base scoped to tx, or b itself when tx is nil.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Page counts the rows matched by q and then loads one page of them into dest.
// The count ignores order and limit clauses set afterwards.
func Page(q *gorm.DB, order string, limit, offset int, dest any) (int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Limit(limit).Offset(offset).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern lowercases term and escapes LIKE wildcards for use with
// ESCAPE '\'. It returns "" for a blank term.
func LikePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(term) + "%"
}

// MatchAny filters q to rows where any of columns contains term, ignoring
// case. Wildcards in term match literally. A blank term leaves q unchanged.
func MatchAny(q *gorm.DB, term string, columns ...string) *gorm.DB {
	pattern := LikePattern(term)
	if pattern == "" || len(columns) == 0 {
		return q
	}
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return q.Where(strings.Join(conds, " OR "), args...)
}
