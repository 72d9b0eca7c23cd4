package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/dbx"
	"github.com/hmmelton/bytechef/internal/server/models"
	"github.com/hmmelton/bytechef/internal/server/repositories/repomanager"
)

// RecipeService stores recipes as opaque JSON documents. The server does not
// interpret the document beyond the id, author and timestamp fields it lifts
// into columns; the clients own the schema.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager) *RecipeService {
	return &RecipeService{db: db, repomanager: m}
}

// Create mints a recipe id, stamps the document with it and the author, and
// stores it. Returns the new id.
func (s *RecipeService) Create(ctx context.Context, authorID string, doc json.RawMessage) (string, error) {

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", fmt.Errorf("%w: malformed recipe document", common.ErrorInternal)
	}

	id := uuid.NewString()
	fields["id"], _ = json.Marshal(id)
	fields["author_id"], _ = json.Marshal(authorID)

	updatedAt := documentTimestamp(fields)
	if updatedAt == 0 {
		updatedAt = time.Now().UnixMilli()
		fields["last_updated_timestamp"] = json.RawMessage(strconv.FormatInt(updatedAt, 10))
	}

	stamped, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("packing recipe document: %w", err)
	}

	err = s.repomanager.Recipes(s.db).Create(ctx, &models.Recipe{
		ID:        id,
		AuthorID:  authorID,
		Doc:       stamped,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get returns the recipe document.
func (s *RecipeService) Get(ctx context.Context, id string) (json.RawMessage, error) {
	recipe, err := s.repomanager.Recipes(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return recipe.Doc, nil
}

// ListByAuthor returns all documents by one author, most recently updated
// first.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID string) ([]json.RawMessage, error) {
	recipes, err := s.repomanager.Recipes(s.db).ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	docs := make([]json.RawMessage, 0, len(recipes))
	for _, r := range recipes {
		docs = append(docs, r.Doc)
	}
	return docs, nil
}

// Patch merges fields into the recipe document and bumps its timestamp.
// Only the recipe's author may patch it.
func (s *RecipeService) Patch(ctx context.Context, callerUID, id string, fields map[string]json.RawMessage) error {

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if recipe.AuthorID != callerUID {
			return common.ErrUserMismatch
		}

		// id and author are immutable, whatever the caller sent.
		delete(fields, "id")
		delete(fields, "author_id")

		updatedAt := documentTimestamp(fields)
		if updatedAt == 0 {
			updatedAt = time.Now().UnixMilli()
			fields["last_updated_timestamp"] = json.RawMessage(strconv.FormatInt(updatedAt, 10))
		}

		doc, err := mergeDocument(recipe.Doc, fields)
		if err != nil {
			return err
		}
		return repo.Update(ctx, id, doc, updatedAt)
	})
}

// Delete removes a recipe. Only its author may delete it. A missing recipe
// is not an error so retried deletes stay idempotent.
func (s *RecipeService) Delete(ctx context.Context, callerUID, id string) error {

	recipe, err := s.repomanager.Recipes(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if recipe.AuthorID != callerUID {
		return common.ErrUserMismatch
	}
	return s.repomanager.Recipes(s.db).Delete(ctx, id)
}

// documentTimestamp extracts last_updated_timestamp from patch fields, zero
// when absent or malformed.
func documentTimestamp(fields map[string]json.RawMessage) int64 {
	raw, ok := fields["last_updated_timestamp"]
	if !ok {
		return 0
	}
	var ts int64
	if err := json.Unmarshal(raw, &ts); err != nil {
		return 0
	}
	return ts
}
