package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/dbx"
	"github.com/hmmelton/bytechef/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, profile)
         VALUES ($1, $2, $3)
		 RETURNING uid
		 `

	profile := user.Profile
	if profile == nil {
		profile = json.RawMessage(`{}`)
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, profile).Scan(&user.UID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT uid, email, password_hash, profile FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.UID, &user.Email, &user.PasswordHash, &user.Profile)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	query :=
		`SELECT uid, email, password_hash, profile FROM users
		 WHERE uid = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&user.UID, &user.Email, &user.PasswordHash, &user.Profile)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, uid string, profile json.RawMessage) error {
	query :=
		`UPDATE users SET profile = $2
		 WHERE uid = $1
		 `

	res, err := r.db.ExecContext(ctx, query, uid, profile)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM users WHERE uid = $1`

	if _, err := r.db.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
