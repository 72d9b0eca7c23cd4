package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/dbx"
)

// UpsertRecipe writes a recipe header and all of its child rows in one
// transaction. Existing children are replaced wholesale so the stored order
// indices always mirror the given recipe.
func (s *Store) UpsertRecipe(ctx context.Context, r *models.Recipe) error {
	if r == nil || r.ID == "" {
		return errors.New("recipe id is required")
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return upsertRecipeTx(ctx, tx, r)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert recipe: %w", err)
	}
	return s.publishRecipeSnapshot(ctx)
}

// ReplaceRecipesForAuthor reconciles the cached collection of one author
// with the given remote snapshot: recipes absent from the snapshot are
// pruned, the rest are upserted. Runs in a single transaction.
func (s *Store) ReplaceRecipesForAuthor(ctx context.Context, authorID string, recipes []models.Recipe) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM recipes WHERE author_id = ?`, authorID)
		if err != nil {
			return err
		}
		existing := map[string]bool{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			existing[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		keep := map[string]bool{}
		for i := range recipes {
			keep[recipes[i].ID] = true
		}
		for id := range existing {
			if !keep[id] {
				if _, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
					return err
				}
			}
		}

		for i := range recipes {
			if err := upsertRecipeTx(ctx, tx, &recipes[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace recipes for author: %w", err)
	}
	return s.publishRecipeSnapshot(ctx)
}

// DeleteRecipe removes a recipe header; child rows go with it via cascade.
// Deleting an id that is not cached is not an error.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return s.publishRecipeSnapshot(ctx)
}

// RecipeByID loads one recipe with ordered children. Returns
// common.ErrorNotFound if the id is not cached.
func (s *Store) RecipeByID(ctx context.Context, id string) (*models.Recipe, error) {
	row := s.db.QueryRowContext(ctx, selectRecipeHeader+` WHERE id = ?`, id)
	r, err := scanRecipeHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	if err := s.loadChildren(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AllRecipes returns every cached recipe with ordered children.
func (s *Store) AllRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, selectRecipeHeader+` ORDER BY name, id`)
}

// FilteredRecipes returns cached recipes matching the given cuisine and/or
// dietary restriction. An empty argument means "no filter on that axis".
func (s *Store) FilteredRecipes(ctx context.Context, cuisine, dietaryRestriction string) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, selectRecipeHeader+`
		WHERE (? = '' OR cuisine = ?)
		AND (? = '' OR id IN (
			SELECT recipe_id FROM recipe_dietary_restrictions WHERE name = ?
		))
		ORDER BY name, id`,
		cuisine, cuisine, dietaryRestriction, dietaryRestriction)
}

// RecipesUpdatedSince returns recipes whose header changed after the given
// unix-millisecond timestamp. Used to find local edits pending upload.
func (s *Store) RecipesUpdatedSince(ctx context.Context, ts int64) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, selectRecipeHeader+` WHERE last_updated_timestamp > ? ORDER BY last_updated_timestamp`, ts)
}

const selectRecipeHeader = `
	SELECT id, name, description, servings, cuisine, meal_type, author_id, image_uri, cook_time, last_updated_timestamp
	FROM recipes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipeHeader(row rowScanner) (*models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Servings, &r.Cuisine,
		&r.MealType, &r.AuthorID, &r.ImageURI, &r.CookTimeMin, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	result := make([]models.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipeHeader(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := s.loadChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// loadChildren populates ordered child collections. ORDER BY keeps the
// flattened view sorted by index, not by insertion order.
func (s *Store) loadChildren(ctx context.Context, r *models.Recipe) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, quantity, unit, order_num FROM ingredients WHERE recipe_id = ? ORDER BY order_num`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to select ingredients: %w", err)
	}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Unit, &ing.OrderNum); err != nil {
			rows.Close()
			return err
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT description, step_num FROM instructions WHERE recipe_id = ? ORDER BY step_num`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to select instructions: %w", err)
	}
	for rows.Next() {
		var ins models.Instruction
		if err := rows.Scan(&ins.Description, &ins.StepNum); err != nil {
			rows.Close()
			return err
		}
		r.Instructions = append(r.Instructions, ins)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT name FROM recipe_dietary_restrictions WHERE recipe_id = ? ORDER BY name`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to select dietary restrictions: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		r.DietaryRestrictions = append(r.DietaryRestrictions, name)
	}
	rows.Close()
	return rows.Err()
}

func upsertRecipeTx(ctx context.Context, tx dbx.DBTX, r *models.Recipe) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (id, name, description, servings, cuisine, meal_type, author_id, image_uri, cook_time, last_updated_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			servings = excluded.servings,
			cuisine = excluded.cuisine,
			meal_type = excluded.meal_type,
			author_id = excluded.author_id,
			image_uri = excluded.image_uri,
			cook_time = excluded.cook_time,
			last_updated_timestamp = excluded.last_updated_timestamp
	`, r.ID, r.Name, r.Description, r.Servings, r.Cuisine, r.MealType, r.AuthorID, r.ImageURI, r.CookTimeMin, r.UpdatedAt)
	if err != nil {
		return err
	}

	for _, table := range []string{"ingredients", "instructions", "recipe_dietary_restrictions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE recipe_id = ?`, r.ID); err != nil {
			return err
		}
	}

	for _, ing := range r.Ingredients {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingredients (recipe_id, name, quantity, unit, order_num) VALUES (?, ?, ?, ?, ?)`,
			r.ID, ing.Name, ing.Quantity, ing.Unit, ing.OrderNum)
		if err != nil {
			return err
		}
	}
	for _, ins := range r.Instructions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO instructions (recipe_id, description, step_num) VALUES (?, ?, ?)`,
			r.ID, ins.Description, ins.StepNum)
		if err != nil {
			return err
		}
	}
	for _, name := range r.DietaryRestrictions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_dietary_restrictions (recipe_id, name) VALUES (?, ?)`,
			r.ID, name)
		if err != nil {
			return err
		}
	}
	return nil
}
