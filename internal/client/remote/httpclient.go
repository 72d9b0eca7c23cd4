package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hmmelton/bytechef/internal/client/models"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
)

// HTTPClient implements Client over the backend's JSON API.
// Access and refresh tokens are held in memory; on a 401 the client
// refreshes once and retries the original request.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Logout drops the in-memory tokens. The backend does not track access
// tokens server-side, so forgetting them is enough.
func (c *HTTPClient) Logout() {
	c.setTokens("", "")
}

// do issues one authenticated request, refreshing the access token and
// retrying once if the backend answers 401. out may be nil when the caller
// only cares about the status.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
	}

	status, err := c.once(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		if err := c.refresh(ctx); err != nil {
			return err
		}
		status, err = c.once(ctx, method, path, body, out)
		if err != nil {
			return err
		}
	}
	return statusToError(status)
}

func (c *HTTPClient) once(ctx context.Context, method, path string, body []byte, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.tokens(); access != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("%w: decoding response: %v", common.ErrorInternal, err)
		}
	}
	return resp.StatusCode, nil
}

// refresh trades the refresh token for a new pair. A failed refresh leaves
// the caller unauthorized; the stale tokens are dropped so the next attempt
// starts clean.
func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refreshToken := c.tokens()
	if refreshToken == "" {
		return common.ErrorUnauthorized
	}

	in := map[string]string{"refresh_token": refreshToken}
	body, _ := json.Marshal(in)
	var session Session
	status, err := c.once(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &session)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		c.setTokens("", "")
		return common.ErrorUnauthorized
	}
	c.setTokens(session.AccessToken, session.RefreshToken)
	return nil
}

func statusToError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status == http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case status == http.StatusForbidden:
		return common.ErrUserMismatch
	case status == http.StatusConflict:
		return common.ErrEmailTaken
	default:
		return fmt.Errorf("%w: unexpected status %d", common.ErrorInternal, status)
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) auth(ctx context.Context, path, email, password string) (*Session, error) {
	body, _ := json.Marshal(credentials{Email: email, Password: password})
	var session Session
	status, err := c.once(ctx, http.MethodPost, path, body, &session)
	if err != nil {
		return nil, err
	}
	if err := statusToError(status); err != nil {
		return nil, err
	}
	c.setTokens(session.AccessToken, session.RefreshToken)
	return &session, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*Session, error) {
	return c.auth(ctx, "/api/v1/auth/register", email, password)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.auth(ctx, "/api/v1/auth/login", email, password)
}

func (c *HTTPClient) CreateUser(ctx context.Context, user *models.User) error {
	return c.do(ctx, http.MethodPut, "/api/v1/users/"+url.PathEscape(user.ID), user, nil)
}

func (c *HTTPClient) FetchUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(uid), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, uid string, patch models.UserPatch) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/users/"+url.PathEscape(uid), patch.Fields(), nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/users/"+url.PathEscape(uid), nil, nil)
}

// CreateRecipe posts the recipe and returns the server-assigned id.
func (c *HTTPClient) CreateRecipe(ctx context.Context, recipe *models.Recipe) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/recipes", recipe, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *HTTPClient) FetchRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/v1/recipes/"+url.PathEscape(id), nil, &recipe); err != nil {
		return nil, err
	}
	recipe.SortChildren()
	return &recipe, nil
}

func (c *HTTPClient) FetchRecipesByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	path := "/api/v1/recipes?author=" + url.QueryEscape(authorID)
	if err := c.do(ctx, http.MethodGet, path, nil, &recipes); err != nil {
		return nil, err
	}
	for i := range recipes {
		recipes[i].SortChildren()
	}
	return recipes, nil
}

func (c *HTTPClient) UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/recipes/"+url.PathEscape(id), patch.Fields(), nil)
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/recipes/"+url.PathEscape(id), nil, nil)
}

// RecipeImageUploadURL asks the backend for a presigned PUT URL for the
// recipe's image object.
func (c *HTTPClient) RecipeImageUploadURL(ctx context.Context, recipeID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/api/v1/recipes/" + url.PathEscape(recipeID) + "/image-url"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
