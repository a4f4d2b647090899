package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for callers that compose their own queries
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn with a repository bound to a single transaction
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Page holds offset pagination arguments
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page, treating pages below 1 as 1
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages returns ceil(total / size)
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
