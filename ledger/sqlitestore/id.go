package sqlitestore

import (
	"strings"

	"github.com/google/uuid"
)

func newID() string { return uuid.NewString() }

// isUniqueViolation reports whether err came from the external_id unique
// index; modernc.org/sqlite surfaces this as a plain "UNIQUE constraint
// failed" message rather than a typed sentinel.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
