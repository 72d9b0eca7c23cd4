package users

import (
	"context"
	"encoding/json"

	"github.com/hmmelton/bytechef/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	SaveProfile(ctx context.Context, uid string, profile json.RawMessage) error
	Delete(ctx context.Context, uid string) error
}
