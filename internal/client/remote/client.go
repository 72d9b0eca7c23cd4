// Package remote talks to the backend REST API. It is the canonical side
// of every synchronized repository: writes go here first, reads come back
// down into the local cache.
package remote

import (
	"context"

	"github.com/hmmelton/bytechef/internal/client/models"
)

// Session is what the auth endpoints hand back on success.
type Session struct {
	UID          string `json:"uid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client is the surface the repositories and the sync machinery consume.
// Implementations must map backend failures onto the sentinel errors in
// internal/common so callers can branch with errors.Is.
type Client interface {
	Ping(ctx context.Context) error

	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout()

	CreateUser(ctx context.Context, user *models.User) error
	FetchUser(ctx context.Context, uid string) (*models.User, error)
	UpdateUser(ctx context.Context, uid string, patch models.UserPatch) error
	DeleteUser(ctx context.Context, uid string) error

	CreateRecipe(ctx context.Context, recipe *models.Recipe) (string, error)
	FetchRecipe(ctx context.Context, id string) (*models.Recipe, error)
	FetchRecipesByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch) error
	DeleteRecipe(ctx context.Context, id string) error

	RecipeImageUploadURL(ctx context.Context, recipeID string) (string, error)

	Close() error
}
