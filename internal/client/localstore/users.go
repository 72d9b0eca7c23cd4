package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/dbx"
)

// UpsertUser stores u as the single cached current user, replacing any
// previously cached account in the same transaction.
func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	if u == nil || u.ID == "" {
		return errors.New("user id is required")
	}

	stored := u.Clone()
	stored.Normalize()

	restrictions, err := json.Marshal(stored.DietaryRestrictions)
	if err != nil {
		return fmt.Errorf("failed to encode dietary restrictions: %w", err)
	}
	cuisines, err := json.Marshal(stored.FavoriteCuisines)
	if err != nil {
		return fmt.Errorf("failed to encode favorite cuisines: %w", err)
	}
	favorites, err := json.Marshal(stored.FavoriteRecipeIDs)
	if err != nil {
		return fmt.Errorf("failed to encode favorite recipe ids: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// Single logical current user: drop any other cached account.
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id <> ?`, stored.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, display_name, email, dietary_restrictions, favorite_cuisines, favorite_recipe_ids)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				email = excluded.email,
				dietary_restrictions = excluded.dietary_restrictions,
				favorite_cuisines = excluded.favorite_cuisines,
				favorite_recipe_ids = excluded.favorite_recipe_ids
		`, stored.ID, stored.DisplayName, stored.Email, restrictions, cuisines, favorites)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return s.publishUserSnapshot(ctx)
}

// CurrentUser returns the cached current user, or (nil, nil) when nobody is
// signed in.
func (s *Store) CurrentUser(ctx context.Context) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, dietary_restrictions, favorite_cuisines, favorite_recipe_ids
		FROM users LIMIT 1`)

	var u models.User
	var restrictions, cuisines, favorites []byte
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &restrictions, &cuisines, &favorites)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}

	if err := json.Unmarshal(restrictions, &u.DietaryRestrictions); err != nil {
		return nil, fmt.Errorf("failed to decode dietary restrictions: %w", err)
	}
	if err := json.Unmarshal(cuisines, &u.FavoriteCuisines); err != nil {
		return nil, fmt.Errorf("failed to decode favorite cuisines: %w", err)
	}
	if err := json.Unmarshal(favorites, &u.FavoriteRecipeIDs); err != nil {
		return nil, fmt.Errorf("failed to decode favorite recipe ids: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the cached user with the given id. Deleting an id that
// is not cached is not an error: the cache is already in the desired state.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uid); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return s.publishUserSnapshot(ctx)
}

// ClearUser wipes the cached current user regardless of id (sign-out).
func (s *Store) ClearUser(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return s.publishUserSnapshot(ctx)
}
