package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-cinema/internal/models"
)

// DB reads ticket clerk accounts.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetClerkByUsername(ctx context.Context, username string) (*models.TicketClerk, error) {
	var clerk models.TicketClerk
	err := d.Bun.NewSelect().
		Model(&clerk).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &clerk, nil
}
