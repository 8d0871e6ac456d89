package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a fresh UUID when the caller did not provide one. Rows get
// their identifier client side so SQLite test databases behave like Postgres.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
