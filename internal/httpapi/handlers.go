package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/identity"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/store"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

type API struct {
	Store    *store.Store
	Identity identity.Resolver
	Log      *zap.Logger
}

type ctxKey int

const userKey ctxKey = 0

// RequireUser resolves the bearer token and injects the user into the
// request context.
func (a *API) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		u, err := a.Identity.CurrentUser(r.Context(), token)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, *u)))
	})
}

func userFrom(r *http.Request) types.User {
	u, _ := r.Context().Value(userKey).(types.User)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) notFoundOr500(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	a.Log.Error("store error", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (a *API) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	b := store.Board{ID: uuid.NewString(), Name: req.Name, OwnerID: userFrom(r).ID}
	if err := a.Store.CreateBoard(r.Context(), &b); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := a.Store.ListBoards(r.Context(), userFrom(r).ID)
	if err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (a *API) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := a.Store.GetBoard(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) RenameBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if err := a.Store.RenameBoard(r.Context(), chi.URLParam(r, "boardID"), req.Name); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DeleteBoard(r.Context(), chi.URLParam(r, "boardID")); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ListElements(w http.ResponseWriter, r *http.Request) {
	els, err := a.Store.LoadElements(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, els)
}

// SaveElement accepts the full snapshot. The write is independent of the
// realtime broadcast: a failure here is reported to the caller but nothing
// already fanned out gets rolled back.
func (a *API) SaveElement(w http.ResponseWriter, r *http.Request) {
	var el types.ElementSnapshot
	if err := json.NewDecoder(r.Body).Decode(&el); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	el.ID = chi.URLParam(r, "elementID")
	el.BoardID = chi.URLParam(r, "boardID")
	el.UpdatedAt = time.Now()
	isUpdate := r.URL.Query().Get("create") != "1"
	if err := a.Store.SaveElement(r.Context(), el, isUpdate); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

func (a *API) DeleteElement(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DeleteElement(r.Context(), chi.URLParam(r, "elementID")); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	cs, err := a.Store.ListCollaborators(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (a *API) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = "editor"
	}
	c := store.Collaborator{BoardID: chi.URLParam(r, "boardID"), UserID: req.UserID, Role: req.Role}
	if err := a.Store.AddCollaborator(r.Context(), &c); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.RemoveCollaborator(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "userID")); err != nil {
		a.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
