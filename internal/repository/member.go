package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gym-checkin-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that a requested row does not exist.
var ErrNotFound = errors.New("not found")

// MemberRepository handles database operations for members
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create creates a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	disciplines, err := json.Marshal(member.Disciplines)
	if err != nil {
		return fmt.Errorf("failed to encode disciplines: %w", err)
	}

	query := `
		INSERT INTO members (id, first_name, last_name, sex, birth_date, category, disciplines, plan, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		member.ID, member.FirstName, member.LastName, member.Sex, member.BirthDate,
		member.Category, disciplines, member.Plan, member.PaidAt, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `
		SELECT id, first_name, last_name, sex, birth_date, category, disciplines, plan, paid_at, created_at
		FROM members
		WHERE id = $1
	`
	var (
		member      models.Member
		disciplines []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&member.ID, &member.FirstName, &member.LastName, &member.Sex, &member.BirthDate,
		&member.Category, &disciplines, &member.Plan, &member.PaidAt, &member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if len(disciplines) > 0 {
		if err := json.Unmarshal(disciplines, &member.Disciplines); err != nil {
			return nil, fmt.Errorf("failed to decode disciplines: %w", err)
		}
	}

	return &member, nil
}
