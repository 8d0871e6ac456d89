package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorDump is the log-friendly view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	// Resource names the domain record behind a known constraint.
	Resource string `json:"resource,omitempty"`
}

// constraintResources maps schema constraint names to the record they guard.
var constraintResources = map[string]string{
	"ux_users_email":             "user email",
	"ux_groups_active_name":      "group name",
	"group_members_pkey":         "group membership",
	"groups_counters_check":      "group counters",
	"pet_likes_pkey":             "pet like",
	"ux_pet_reports_open":        "open pet report",
	"pets_stray_fee_check":       "stray adoption fee",
	"pets_adoption_check":        "pet adoption",
	"post_likes_pkey":            "post like",
	"post_shares_pkey":           "post share",
	"group_posts_counters_check": "post counters",
}

// ConstraintResource returns the domain record guarded by constraint, or "".
func ConstraintResource(constraint string) string {
	return constraintResources[constraint]
}

// Dump walks the chain and lifts Postgres fields from the pgx driver error.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		d.PGCode = pgErr.Code
		d.PGConstraint = pgErr.ConstraintName
		d.PGTable = pgErr.TableName
		d.PGColumn = pgErr.ColumnName
		d.PGDetail = pgErr.Detail
		d.PGMessage = pgErr.Message
		d.Resource = ConstraintResource(pgErr.ConstraintName)
	}
	return d
}
