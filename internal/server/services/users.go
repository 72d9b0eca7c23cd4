// Package services contains server-side business logic: account management,
// token issuance and rotation, recipe storage and image presigning.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/dbx"
	"github.com/hmmelton/bytechef/internal/server/auth"
	"github.com/hmmelton/bytechef/internal/server/config"
	"github.com/hmmelton/bytechef/internal/server/models"
	"github.com/hmmelton/bytechef/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is what the auth endpoints return: the account id plus tokens.
type AuthResult struct {
	UID string
	TokenPair
}

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// UserService provides account operations:
// - Register / Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - profile storage as an opaque JSONB document
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an account and returns its first token pair. A taken
// email yields ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return common.ErrEmailTaken
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		// Seed the profile so a fetch before the client's first PUT still
		// returns a well-formed document.
		seed, _ := json.Marshal(map[string]string{"uid": user.UID, "email": email})
		if err := repo.SaveProfile(ctx, user.UID, seed); err != nil {
			return fmt.Errorf("error seeding profile: %w", err)
		}

		pair, err := s.generateTokenPair(ctx, user.UID, tx)
		if err != nil {
			return err
		}
		result = &AuthResult{UID: user.UID, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Login verifies the credentials and mints a token pair. Both an unknown
// email and a wrong password yield ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.UID, s.db)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UID: user.UID, TokenPair: *pair}, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh pair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {

	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}

		pair, err := s.generateTokenPair(ctx, token.UserID, tx)
		if err != nil {
			return err
		}
		result = &AuthResult{UID: token.UserID, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProfile returns the stored profile document.
func (s *UserService) GetProfile(ctx context.Context, uid string) (json.RawMessage, error) {
	user, err := s.repomanager.Users(s.db).GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return user.Profile, nil
}

// SaveProfile replaces the profile document wholesale.
func (s *UserService) SaveProfile(ctx context.Context, uid string, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return fmt.Errorf("%w: invalid profile document", common.ErrorInternal)
	}
	return s.repomanager.Users(s.db).SaveProfile(ctx, uid, doc)
}

// PatchProfile merges the given top-level fields into the profile document.
func (s *UserService) PatchProfile(ctx context.Context, uid string, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.GetByUID(ctx, uid)
		if err != nil {
			return err
		}

		doc, err := mergeDocument(user.Profile, fields)
		if err != nil {
			return err
		}
		return repo.SaveProfile(ctx, uid, doc)
	})
}

// DeleteAccount removes the account. Recipes and refresh tokens go with it
// through the schema's cascades.
func (s *UserService) DeleteAccount(ctx context.Context, uid string) error {
	return s.repomanager.Users(s.db).Delete(ctx, uid)
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// mergeDocument overlays fields onto a JSON object document.
func mergeDocument(doc json.RawMessage, fields map[string]json.RawMessage) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &merged); err != nil {
			return nil, fmt.Errorf("unpacking document: %w", err)
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("packing document: %w", err)
	}
	return out, nil
}
