package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/culinary-events/internal/model"
)

// Querier is the subset of *pgxpool.Pool used to read events.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const listEventsSQL = `SELECT id, title, cuisine, chef, country, category, location,
       description, long_description, duration, highlights, image,
       date, price, max_participants, current_participants
  FROM events
 ORDER BY position ASC, id ASC`

// LoadPostgres reads the events table once and freezes it into a snapshot.
// The table is never written to.
func LoadPostgres(ctx context.Context, db Querier) (*StaticRepository, error) {
	rows, err := db.Query(ctx, listEventsSQL)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			e        model.Event
			category string
		)
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Cuisine, &e.Chef, &e.Country, &category, &e.Location,
			&e.Description, &e.LongDescription, &e.Duration, &e.Highlights, &e.Image,
			&e.Date, &e.Price, &e.MaxParticipants, &e.CurrentParticipants,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Category = model.Category(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return NewStaticRepository(events)
}
