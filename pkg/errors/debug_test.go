package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpLiftsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_groups_active_name",
		TableName:      "groups",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("insert group: %w", pgErr), "group name already taken")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGTable != "groups" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if d.Resource != "group name" {
		t.Fatalf("expected group name resource got %q", d.Resource)
	}
	if len(d.Chain) < 3 {
		t.Fatalf("expected full chain got %v", d.Chain)
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	d := Dump(New(CodeNotFound, "pet not found"))
	if d.PGCode != "" || d.Resource != "" {
		t.Fatalf("expected no pg fields got %+v", d)
	}
	if d.TopMessage == "" {
		t.Fatal("expected top message")
	}
	if got := Dump(nil); got.TopMessage != "" {
		t.Fatalf("expected empty dump for nil got %+v", got)
	}
}

func TestConstraintResourceUnknown(t *testing.T) {
	if got := ConstraintResource("some_other_index"); got != "" {
		t.Fatalf("expected empty resource got %q", got)
	}
}
