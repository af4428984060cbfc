// Package repo is the gorm-backed storage of the shop. A *GormRepo returned by
// Transaction is a unit of work: every call on it runs inside the same database transaction.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// forUpdate is a no-op on sqlite, which serializes writers anyway.
var forUpdate = clause.Locking{Strength: "UPDATE"}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrNotFound)
	}
	return err
}

func conflict(err error, format string, args ...any) error {
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrConflict)
	}
	return err
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
