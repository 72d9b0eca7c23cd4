// Package localstore is the on-device cache: the authoritative-for-offline
// copy of the current user and of the user's recipe collection, kept in
// SQLite. Recipes are decomposed into a header row plus ordered child rows
// (ingredients, instructions, dietary tags) joined by foreign key with
// cascading delete.
//
// Reads never touch the network. Mutations to a recipe and its children
// happen in one transaction; after every committed mutation the store pushes
// a fresh snapshot to its observers (most-recent-value delivery, see watchx).
package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hmmelton/bytechef/internal/client/localstore/migrations"
	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/hmmelton/bytechef/internal/watchx"
	"github.com/pressly/goose/v3"
)

// Store owns the cache database and the two observation feeds.
type Store struct {
	db  *sql.DB
	log logging.Logger

	userFeed   *watchx.Source[*models.User]
	recipeFeed *watchx.Source[[]models.Recipe]
}

// DSN builds a SQLite DSN for the given file path with foreign-key
// enforcement enabled on every pooled connection.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)"
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the cache database at dsn, migrates it,
// and seeds the observation feeds with the current snapshots.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	s := &Store{
		db:         db,
		log:        log.With("module", "localstore"),
		userFeed:   watchx.NewSource[*models.User](),
		recipeFeed: watchx.NewSource[[]models.Recipe](),
	}

	if err := s.publishUserSnapshot(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.publishRecipeSnapshot(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	s.userFeed.Close()
	s.recipeFeed.Close()
	return s.db.Close()
}

// ObserveUser returns a live sequence of the cached current user; nil means
// nobody is signed in. The channel closes when ctx is cancelled or the store
// is closed.
func (s *Store) ObserveUser(ctx context.Context) <-chan *models.User {
	return s.userFeed.Subscribe(ctx)
}

// ObserveRecipes returns a live sequence of the full cached recipe
// collection, each recipe with ordered children.
func (s *Store) ObserveRecipes(ctx context.Context) <-chan []models.Recipe {
	return s.recipeFeed.Subscribe(ctx)
}

func (s *Store) publishUserSnapshot(ctx context.Context) error {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	s.userFeed.Publish(u)
	return nil
}

func (s *Store) publishRecipeSnapshot(ctx context.Context) error {
	list, err := s.AllRecipes(ctx)
	if err != nil {
		return err
	}
	s.recipeFeed.Publish(list)
	return nil
}
