package repository

import (
	"context"
	"database/sql"
	"time"

	"smart_ems/internal/models"
)

type EventRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, from, to time.Time, typ, alertID string) ([]models.AlertEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
