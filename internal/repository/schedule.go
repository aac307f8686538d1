package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym-checkin-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository handles database operations for weekly schedules.
// One document exists per member category.
type ScheduleRepository struct {
	db *pgxpool.Pool
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get retrieves the schedule document for a category. The category is
// lower-cased before lookup.
func (r *ScheduleRepository) Get(ctx context.Context, category string) (*models.Schedule, error) {
	category = strings.ToLower(category)

	query := `
		SELECT category, days
		FROM schedules
		WHERE category = $1
	`
	var (
		schedule models.Schedule
		days     []byte
	)
	err := r.db.QueryRow(ctx, query, category).Scan(&schedule.Category, &days)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("schedule %s: %w", category, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if len(days) > 0 {
		if err := json.Unmarshal(days, &schedule.Days); err != nil {
			return nil, fmt.Errorf("failed to decode schedule days: %w", err)
		}
	}
	if schedule.Days == nil {
		schedule.Days = map[time.Weekday][]models.Session{}
	}

	return &schedule, nil
}
