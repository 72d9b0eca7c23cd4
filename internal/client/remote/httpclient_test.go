package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return NewHTTPClient(srv.URL, 5*time.Second, log)
}

func TestLogin_StoresTokensAndSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "a@b.c", creds.Email)
		json.NewEncoder(w).Encode(Session{UID: "u-1", AccessToken: "at-1", RefreshToken: "rt-1"})
	})
	var gotAuth string
	mux.HandleFunc("GET /api/v1/users/u-1", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(common.AuthorizationHeader)
		json.NewEncoder(w).Encode(models.User{ID: "u-1", Email: "a@b.c"})
	})

	c := newTestClient(t, mux)
	session, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.Equal(t, "u-1", session.UID)

	user, err := c.FetchUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "a@b.c", user.Email)
	require.Equal(t, common.BearerPrefix+"at-1", gotAuth)
}

func TestDo_RefreshesOnceOn401(t *testing.T) {
	var fetches int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{UID: "u-1", AccessToken: "stale", RefreshToken: "rt-1"})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "rt-1", in["refresh_token"])
		json.NewEncoder(w).Encode(Session{UID: "u-1", AccessToken: "fresh", RefreshToken: "rt-2"})
	})
	mux.HandleFunc("GET /api/v1/users/u-1", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		if r.Header.Get(common.AuthorizationHeader) != common.BearerPrefix+"fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.User{ID: "u-1"})
	})

	c := newTestClient(t, mux)
	_, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	user, err := c.FetchUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, 2, fetches)

	_, refresh := c.tokens()
	require.Equal(t, "rt-2", refresh, "rotated refresh token replaces the old one")
}

func TestDo_FailedRefreshDropsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{UID: "u-1", AccessToken: "stale", RefreshToken: "dead"})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /api/v1/users/u-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, mux)
	_, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	_, err = c.FetchUser(context.Background(), "u-1")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	access, refresh := c.tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
}

func TestRegister_EmailTaken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	c := newTestClient(t, mux)
	_, err := c.Register(context.Background(), "a@b.c", "secret")
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestCreateRecipe_ReturnsServerID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/recipes", func(w http.ResponseWriter, r *http.Request) {
		var recipe models.Recipe
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recipe))
		require.Equal(t, "Pancakes", recipe.Name)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "r-42"})
	})

	c := newTestClient(t, mux)
	id, err := c.CreateRecipe(context.Background(), &models.Recipe{Name: "Pancakes"})
	require.NoError(t, err)
	require.Equal(t, "r-42", id)
}

func TestFetchRecipe_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := newTestClient(t, mux)
	_, err := c.FetchRecipe(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateUser_SendsOnlySetFields(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/v1/users/u-1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux)
	name := "Chef"
	err := c.UpdateUser(context.Background(), "u-1", models.UserPatch{DisplayName: &name})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"display_name": "Chef"}, body)
}

func TestRecipeImageUploadURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/recipes/r-1/image-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "https://bucket.example/r-1.jpg?sig=x"})
	})

	c := newTestClient(t, mux)
	url, err := c.RecipeImageUploadURL(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, "https://bucket.example/r-1.jpg?sig=x", url)
}
