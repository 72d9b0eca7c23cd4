package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hmmelton/bytechef/internal/common"
)

// sessionResponse is the body of every auth endpoint.
type sessionResponse struct {
	UID          string `json:"uid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(ctx, "encoding response", "error", err)
	}
}

// writeError maps sentinel errors onto HTTP statuses. Anything unrecognized
// is a 500 with the detail kept server-side.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrUserMismatch):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrEmailTaken):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		s.log.Error(ctx, "request failed", "error", err)
	}
	s.writeJSON(ctx, w, status, map[string]string{"error": http.StatusText(status)})
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		UID:          res.UID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		UID:          res.UID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(r, &req); err != nil || req.RefreshToken == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		UID:          res.UID,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// pathUID checks that the {uid} route value belongs to the caller. Profile
// routes only ever operate on the caller's own account.
func pathUID(r *http.Request) (string, error) {
	uid := r.PathValue("uid")
	if uid != callerUID(r.Context()) {
		return "", common.ErrUserMismatch
	}
	return uid, nil
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil || !json.Valid(doc) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.users.SaveProfile(r.Context(), uid, doc); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	doc, err := s.users.GetProfile(r.Context(), uid)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, json.RawMessage(doc))
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	var fields map[string]json.RawMessage
	if err := readJSON(r, &fields); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.users.PatchProfile(r.Context(), uid, fields); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUID(r)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if err := s.users.DeleteAccount(r.Context(), uid); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil || !json.Valid(doc) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id, err := s.recipes.Create(r.Context(), callerUID(r.Context()), doc)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	if author == "" {
		author = callerUID(r.Context())
	}

	docs, err := s.recipes.ListByAuthor(r.Context(), author)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	s.writeJSON(r.Context(), w, http.StatusOK, docs)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	doc, err := s.recipes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, json.RawMessage(doc))
}

func (s *Server) handlePatchRecipe(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := readJSON(r, &fields); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := s.recipes.Patch(r.Context(), callerUID(r.Context()), r.PathValue("id"), fields); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.recipes.Delete(r.Context(), callerUID(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, nil)
}

func (s *Server) handleRecipeImageURL(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Only the author gets an upload URL for their recipe.
	doc, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	var meta struct {
		AuthorID string `json:"author_id"`
	}
	if err := json.Unmarshal(doc, &meta); err != nil || meta.AuthorID != callerUID(r.Context()) {
		s.writeError(r.Context(), w, common.ErrUserMismatch)
		return
	}

	url, err := s.images.UploadURL(r.Context(), id)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"url": url})
}
