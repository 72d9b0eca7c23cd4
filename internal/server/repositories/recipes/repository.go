package recipes

import (
	"context"
	"encoding/json"

	"github.com/hmmelton/bytechef/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Get(ctx context.Context, id string) (*models.Recipe, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error)
	Update(ctx context.Context, id string, doc json.RawMessage, updatedAt int64) error
	Delete(ctx context.Context, id string) error
}
