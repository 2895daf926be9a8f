package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"garagehub/internal/onboarding/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
	"garagehub/pkg/platform/tx"
)

// PostgresStore persists profiles in the expert_profiles table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `expert_id, phone, business_name, business_type, description, address,
	latitude, longitude, service_radius_km, specialties, years_experience,
	profile_completed, completed_at, created_at, updated_at`

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) conn(ctx context.Context) queryer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Profile, error) {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO expert_profiles (expert_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (expert_id) DO NOTHING`,
		uuid.UUID(expertID), now,
	)
	if err != nil {
		return nil, fmt.Errorf("create expert profile: %w", err)
	}
	return s.FindByExpertID(ctx, expertID)
}

func (s *PostgresStore) FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Profile, error) {
	return s.find(ctx, s.conn(ctx), `SELECT `+profileColumns+` FROM expert_profiles WHERE expert_id = $1`, expertID)
}

// Execute locks the row for the duration of mutate.
func (s *PostgresStore) Execute(ctx context.Context, expertID id.ExpertID, mutate func(*models.Profile) bool) (*models.Profile, error) {
	var out *models.Profile
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		p, err := s.find(ctx, sqlTx,
			`SELECT `+profileColumns+` FROM expert_profiles WHERE expert_id = $1 FOR UPDATE`, expertID)
		if err != nil {
			return err
		}
		if mutate(p) {
			if err := update(ctx, sqlTx, p); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) find(ctx context.Context, q queryer, query string, expertID id.ExpertID) (*models.Profile, error) {
	p, err := scanProfile(q.QueryRowContext(ctx, query, uuid.UUID(expertID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find expert profile: %w", err)
	}
	return p, nil
}

func update(ctx context.Context, q queryer, p *models.Profile) error {
	_, err := q.ExecContext(ctx, `
		UPDATE expert_profiles SET
			phone = $2, business_name = $3, business_type = $4, description = $5, address = $6,
			latitude = $7, longitude = $8, service_radius_km = $9, specialties = $10, years_experience = $11,
			profile_completed = $12, completed_at = $13, updated_at = $14
		WHERE expert_id = $1`,
		uuid.UUID(p.ExpertID), p.Phone, p.BusinessName, p.BusinessType, p.Description, p.Address,
		nullFloat(p.Latitude), nullFloat(p.Longitude), nullRadius(p.ServiceRadiusKm),
		pq.Array(specialtiesOrEmpty(p.Specialties)), nullInt(p.YearsExperience),
		p.ProfileCompleted, nullTime(p.CompletedAt), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update expert profile: %w", err)
	}
	return nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p           models.Profile
		expertID    uuid.UUID
		lat, lng    sql.NullFloat64
		radius      sql.NullInt64
		years       sql.NullInt64
		specialties pq.StringArray
		completedAt sql.NullTime
	)
	err := row.Scan(&expertID, &p.Phone, &p.BusinessName, &p.BusinessType, &p.Description, &p.Address,
		&lat, &lng, &radius, &specialties, &years,
		&p.ProfileCompleted, &completedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.ExpertID = id.ExpertID(expertID)
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lng.Valid {
		p.Longitude = &lng.Float64
	}
	if radius.Valid {
		p.ServiceRadiusKm = int(radius.Int64)
	}
	if years.Valid {
		y := int(years.Int64)
		p.YearsExperience = &y
	}
	if len(specialties) > 0 {
		p.Specialties = []string(specialties)
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		p.CompletedAt = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// specialtiesOrEmpty keeps a nil slice out of the NOT NULL array column.
func specialtiesOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullRadius(km int) any {
	if km == 0 {
		return nil
	}
	return km
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
