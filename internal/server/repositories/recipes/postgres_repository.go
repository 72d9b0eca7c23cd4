package recipes

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

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) error {

	query :=
		`INSERT INTO recipes (id, author_id, doc, updated_at)
         VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query,
		recipe.ID, recipe.AuthorID, recipe.Doc, recipe.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Recipe, error) {
	query :=
		`SELECT id, author_id, doc, updated_at FROM recipes
		 WHERE id = $1
		 `

	recipe := &models.Recipe{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&recipe.ID, &recipe.AuthorID, &recipe.Doc, &recipe.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipe, nil
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error) {
	query :=
		`SELECT id, author_id, doc, updated_at FROM recipes
		 WHERE author_id = $1
		 ORDER BY updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		if err := rows.Scan(&recipe.ID, &recipe.AuthorID, &recipe.Doc, &recipe.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipes, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, doc json.RawMessage, updatedAt int64) error {
	query :=
		`UPDATE recipes SET doc = $2, updated_at = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, doc, updatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM recipes WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
