package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type postgresUserRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresUserRepo(db *pgxpool.Pool, logger logger.Logger) user.Repository {
	return &postgresUserRepo{db: db, logger: logger}
}

const userColumns = "id, email, password_hash, created_at"

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to query user", err)
	}
	return u, nil
}

func (r *postgresUserRepo) CreateWithProfile(ctx context.Context, u *user.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.NewInternal("failed to begin transaction", err)
	}
	defer rollback(ctx, tx, r.logger)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("user", "Email already registered", err)
		}
		return apperror.NewInternal("failed to insert user", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, user_id, updated_at) VALUES ($1, $2, $3)`,
		uuid.New(), u.ID, time.Now().UTC(),
	)
	if err != nil {
		return apperror.NewInternal("failed to create empty profile", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewInternal("failed to commit user registration", err)
	}
	r.logger.Info("User and profile created", zap.String("user_id", u.ID.String()))
	return nil
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query, args, err := psql.Select(userColumns).From("users").Where("email = ?", email).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build user query", err)
	}
	return scanUser(r.db.QueryRow(ctx, query, args...))
}
