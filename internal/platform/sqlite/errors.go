package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/flashdeck/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MapError translates SQLite failures into store errors. Constraint
// violations wrap store.ErrInvalidEntity; missing rows wrap store.ErrNotFound.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	if IsConstraintViolation(err) {
		return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
	}
	return err
}

// IsConstraintViolation reports whether err is an SQLITE_CONSTRAINT failure
// of any kind (CHECK, NOT NULL, UNIQUE, FOREIGN KEY).
func IsConstraintViolation(err error) bool {
	var se *msqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
