// Package httpapi exposes the ByteChef backend over a small JSON REST API.
// Authentication is a bearer JWT on every route except ping and the auth
// endpoints themselves.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/hmmelton/bytechef/internal/server/config"
	"github.com/hmmelton/bytechef/internal/server/services"
)

type Server struct {
	log     logging.Logger
	users   *services.UserService
	recipes *services.RecipeService
	images  *services.ImageService

	jwtSecret []byte
	httpSrv   *http.Server
}

func NewServer(cfg *config.Config, log logging.Logger, users *services.UserService, recipes *services.RecipeService, images *services.ImageService) *Server {
	s := &Server{
		log:       log,
		users:     users,
		recipes:   recipes,
		images:    images,
		jwtSecret: []byte(cfg.SecretKey),
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.EndpointAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed so tests can drive the API through
// httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/ping", s.handlePing)
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	mux.Handle("PUT /api/v1/users/{uid}", s.requireAuth(s.handleSaveProfile))
	mux.Handle("GET /api/v1/users/{uid}", s.requireAuth(s.handleGetProfile))
	mux.Handle("PATCH /api/v1/users/{uid}", s.requireAuth(s.handlePatchProfile))
	mux.Handle("DELETE /api/v1/users/{uid}", s.requireAuth(s.handleDeleteAccount))

	mux.Handle("POST /api/v1/recipes", s.requireAuth(s.handleCreateRecipe))
	mux.Handle("GET /api/v1/recipes", s.requireAuth(s.handleListRecipes))
	mux.Handle("GET /api/v1/recipes/{id}", s.requireAuth(s.handleGetRecipe))
	mux.Handle("PATCH /api/v1/recipes/{id}", s.requireAuth(s.handlePatchRecipe))
	mux.Handle("DELETE /api/v1/recipes/{id}", s.requireAuth(s.handleDeleteRecipe))
	mux.Handle("GET /api/v1/recipes/{id}/image-url", s.requireAuth(s.handleRecipeImageURL))

	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
