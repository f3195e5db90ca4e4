package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type postgresAnalysisRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresAnalysisRepo(db *pgxpool.Pool, logger logger.Logger) analysis.Repository {
	return &postgresAnalysisRepo{db: db, logger: logger}
}

func (r *postgresAnalysisRepo) Save(ctx context.Context, a *analysis.CareerAnalysis) error {
	query, args, err := psql.Insert("career_analyses").
		Columns("id", "user_id", "analysis_result_json", "created_at").
		Values(a.ID, a.UserID, []byte(a.Result), a.CreatedAt).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build analysis insert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewInternal("failed to save career analysis", err)
	}
	return nil
}

func (r *postgresAnalysisRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*analysis.CareerAnalysis, error) {
	query, args, err := psql.Select("id", "user_id", "analysis_result_json", "created_at").
		From("career_analyses").
		Where("user_id = ?", userID).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build analysis query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query career analyses", err)
	}
	defer rows.Close()

	out := make([]*analysis.CareerAnalysis, 0)
	for rows.Next() {
		a := &analysis.CareerAnalysis{}
		var result []byte
		if err := rows.Scan(&a.ID, &a.UserID, &result, &a.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan career analysis", err)
		}
		a.Result = result
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("failed to iterate career analyses", err)
	}
	return out, nil
}

func (r *postgresAnalysisRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("career_analyses").
		Where("user_id = ?", userID).
		ToSql()
	if err != nil {
		return 0, apperror.NewInternal("failed to build analysis count", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperror.NewInternal("failed to count career analyses", err)
	}
	return n, nil
}
