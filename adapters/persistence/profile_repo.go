package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

var profileColumns = []string{
	"id", "user_id", "name", "degree", "qualifications", "skills",
	"gemini_api_key", "profile_picture_base64", "cv_pdf_base64", "cv_text",
	"cv_archive_url", "updated_at",
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Degree,
		&p.Qualifications,
		&p.Skills,
		&p.GeminiAPIKey,
		&p.ProfilePictureBase64,
		&p.CVPDFBase64,
		&p.CVText,
		&p.CVArchiveURL,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}
	return p, nil
}

func selectProfile(ctx context.Context, q querier, userID uuid.UUID, forUpdate bool) (*profile.Profile, error) {
	builder := psql.Select(profileColumns...).From("profiles").Where("user_id = ?", userID)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}
	return scanProfile(q.QueryRow(ctx, query, args...))
}

func insertEmptyProfile(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO profiles (id, user_id, updated_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID, time.Now().UTC(),
	)
	if err != nil {
		return apperror.NewInternal("failed to insert empty profile", err)
	}
	return nil
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return selectProfile(ctx, r.db, userID, false)
}

func (r *postgresProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := selectProfile(ctx, r.db, userID, false)
	if err == nil || !errors.Is(err, profile.ErrProfileNotFound) {
		return p, err
	}

	r.logger.Warn("Profile missing, creating empty one", zap.String("user_id", userID.String()))
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to begin transaction", err)
	}
	defer rollback(ctx, tx, r.logger)

	if err := insertEmptyProfile(ctx, tx, userID); err != nil {
		return nil, err
	}
	p, err = selectProfile(ctx, tx, userID, false)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewInternal("failed to commit profile creation", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, userID uuid.UUID, fn profile.MutateFunc) (*profile.Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to begin transaction", err)
	}
	defer rollback(ctx, tx, r.logger)

	p, err := selectProfile(ctx, tx, userID, true)
	if errors.Is(err, profile.ErrProfileNotFound) {
		if err = insertEmptyProfile(ctx, tx, userID); err != nil {
			return nil, err
		}
		p, err = selectProfile(ctx, tx, userID, true)
	}
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	query, args, err := psql.Update("profiles").
		SetMap(map[string]any{
			"name":                   p.Name,
			"degree":                 p.Degree,
			"qualifications":         p.Qualifications,
			"skills":                 p.Skills,
			"gemini_api_key":         p.GeminiAPIKey,
			"profile_picture_base64": p.ProfilePictureBase64,
			"cv_pdf_base64":          p.CVPDFBase64,
			"cv_text":                p.CVText,
			"cv_archive_url":         p.CVArchiveURL,
			"updated_at":             time.Now().UTC(),
		}).
		Where("user_id = ?", userID).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile update", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		return nil, apperror.NewInternal("failed to update profile", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewInternal("failed to commit profile update", err)
	}
	return p, nil
}

func (r *postgresProfileRepo) SetCVArchiveURL(ctx context.Context, userID uuid.UUID, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET cv_archive_url = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, url,
	)
	if err != nil {
		return apperror.NewInternal("failed to set cv archive url", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}
