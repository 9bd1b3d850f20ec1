package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, first_name, last_name, phone, department, specialty,
			avatar_url, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Department,
			&p.Specialty, &p.AvatarURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Storage, "failed to load profile", err)
	}
	return &p, nil
}

func (r *repoPG) Upsert(ctx context.Context, p *Profile) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, phone,
			department, specialty, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			phone      = EXCLUDED.phone,
			department = EXCLUDED.department,
			specialty  = EXCLUDED.specialty,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING updated_at`,
		p.UserID, p.FirstName, p.LastName, p.Phone, p.Department,
		p.Specialty, p.AvatarURL).Scan(&p.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Storage, "failed to save profile", err)
	}
	return nil
}
