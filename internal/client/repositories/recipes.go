package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hmmelton/bytechef/internal/client/localstore"
	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/client/remote"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
)

const recipesSyncJob = "recipes-sync"

// Recipes is the synchronized recipe repository.
type Recipes struct {
	local    *localstore.Store
	remote   remote.Client
	sessions SessionReader
	log      logging.Logger
	sync     *syncLifecycle
}

func NewRecipes(local *localstore.Store, rc remote.Client, jobs Jobs, sessions SessionReader, interval time.Duration, log logging.Logger) *Recipes {
	r := &Recipes{
		local:    local,
		remote:   rc,
		sessions: sessions,
		log:      log,
	}
	r.sync = &syncLifecycle{
		name:     recipesSyncJob,
		interval: interval,
		jobs:     jobs,
		sessions: sessions,
		log:      log,
		refresh:  r.ForceRefresh,
	}
	return r
}

// Create sends the recipe to the backend, which assigns its id, then caches
// it under that id. If caching fails the backend copy is deleted again and
// the create reports failure.
func (r *Recipes) Create(ctx context.Context, recipe *models.Recipe) (string, error) {
	id, err := r.remote.CreateRecipe(ctx, recipe)
	if err != nil {
		return "", fmt.Errorf("creating recipe upstream: %w", err)
	}
	recipe.ID = id
	if err := r.local.UpsertRecipe(ctx, recipe); err != nil {
		if cerr := r.remote.DeleteRecipe(ctx, id); cerr != nil {
			r.log.Error(ctx, "compensating delete failed", "recipe", id, "error", cerr)
		}
		return "", fmt.Errorf("caching recipe: %w", err)
	}
	return id, nil
}

// ByID reads a single cached recipe.
func (r *Recipes) ByID(ctx context.Context, id string) (*models.Recipe, error) {
	return r.local.RecipeByID(ctx, id)
}

// All reads every cached recipe.
func (r *Recipes) All(ctx context.Context) ([]models.Recipe, error) {
	return r.local.AllRecipes(ctx)
}

// Filtered reads cached recipes matching the given cuisine and dietary
// restriction; an empty string leaves that dimension unfiltered.
func (r *Recipes) Filtered(ctx context.Context, cuisine, dietaryRestriction string) ([]models.Recipe, error) {
	return r.local.FilteredRecipes(ctx, cuisine, dietaryRestriction)
}

// UpdatedSince reads cached recipes whose last update is strictly after ts.
func (r *Recipes) UpdatedSince(ctx context.Context, ts int64) ([]models.Recipe, error) {
	return r.local.RecipesUpdatedSince(ctx, ts)
}

// Update patches a recipe, backend first. A cache miss after the backend
// accepted the patch is tolerated and left for the next refresh to repair;
// a cache failure is reported as an error, but never rolled back upstream.
func (r *Recipes) Update(ctx context.Context, id string, patch models.RecipePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := r.remote.UpdateRecipe(ctx, id, patch); err != nil {
		return fmt.Errorf("updating recipe upstream: %w", err)
	}

	cached, err := r.local.RecipeByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		r.log.Warn(ctx, "cache update skipped, recipe not cached", "recipe", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cached recipe: %w", err)
	}
	patch.ApplyTo(cached)
	if err := r.local.UpsertRecipe(ctx, cached); err != nil {
		return fmt.Errorf("caching recipe update: %w", err)
	}
	return nil
}

// Delete removes the recipe from both stores, cache first. Image cleanup is
// the backend's job; the client only drops its rows.
func (r *Recipes) Delete(ctx context.Context, id string) error {
	if err := r.local.DeleteRecipe(ctx, id); err != nil {
		r.log.Warn(ctx, "cache delete failed", "recipe", id, "error", err)
	}
	if err := r.remote.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("deleting recipe upstream: %w", err)
	}
	return nil
}

// ImageUploadURL asks the backend for a presigned URL the app can PUT the
// recipe photo to.
func (r *Recipes) ImageUploadURL(ctx context.Context, recipeID string) (string, error) {
	return r.remote.RecipeImageUploadURL(ctx, recipeID)
}

// Observe streams cache snapshots of the full recipe collection. The first
// observer starts the periodic sync job and an immediate refresh; the last
// one leaving cancels the job.
func (r *Recipes) Observe(ctx context.Context) <-chan []models.Recipe {
	in := r.local.ObserveRecipes(ctx)
	out := make(chan []models.Recipe, 1)
	r.sync.observerArrived()
	go func() {
		defer r.sync.observerLeft()
		defer close(out)
		for recipes := range in {
			select {
			case <-out:
			default:
			}
			out <- recipes
		}
	}()
	return out
}

// ForceRefresh replaces the cached collection for the account with the
// backend's snapshot, pruning anything deleted elsewhere.
func (r *Recipes) ForceRefresh(ctx context.Context, uid string) error {
	recipes, err := r.remote.FetchRecipesByAuthor(ctx, uid)
	if err != nil {
		return fmt.Errorf("fetching recipes: %w", err)
	}
	if err := r.local.ReplaceRecipesForAuthor(ctx, uid, recipes); err != nil {
		return fmt.Errorf("caching recipes: %w", err)
	}
	return nil
}

func (r *Recipes) StartSync(uid string) { r.sync.start(uid) }
func (r *Recipes) StopSync()            { r.sync.stop() }
