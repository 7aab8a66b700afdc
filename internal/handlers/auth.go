// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tastetrail/internal/apperr"
	"tastetrail/internal/middleware"
	"tastetrail/internal/models"
	"tastetrail/internal/session"
	"tastetrail/internal/validation"
)

// Readers is the reader account store. *docstore.ReaderStore implements it.
type Readers interface {
	Create(ctx context.Context, email, password, displayName string) (*models.Reader, error)
	FindByID(ctx context.Context, id string) (*models.Reader, error)
	FindByEmail(ctx context.Context, email string) (*models.Reader, error)
	CheckPassword(r *models.Reader, password string) bool
}

// Sessions creates and destroys reader sessions. *session.Store
// implements it.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	DestroyAll(ctx context.Context, userID string) (int, error)
}

// Auth groups the reader account endpoints.
type Auth struct {
	readers  Readers
	sessions Sessions
}

// NewAuth creates the Auth handler group.
func NewAuth(readers Readers, sessions Sessions) *Auth {
	return &Auth{readers: readers, sessions: sessions}
}

// readerView is the public form of a reader account.
type readerView struct {
	ID          string                    `json:"id"`
	Email       string                    `json:"email"`
	DisplayName string                    `json:"displayName"`
	LikedPosts  []models.ContentReference `json:"likedPosts"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

func viewOf(r *models.Reader) readerView {
	liked := r.LikedPosts
	if liked == nil {
		liked = []models.ContentReference{}
	}
	return readerView{ID: r.ID, Email: r.Email, DisplayName: r.DisplayName, LikedPosts: liked, CreatedAt: r.CreatedAt}
}

// registerInput is the body of a registration request.
type registerInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"min=8,max=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// Register creates a reader account and signs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(in); err != nil {
		writeErr(w, r, err, "")
		return
	}

	reader, err := a.readers.Create(r.Context(), in.Email, in.Password, in.DisplayName)
	if err != nil {
		writeErr(w, r, apperr.Wrap("register", err), "Failed to register")
		return
	}
	if !a.startSession(w, r, reader) {
		return
	}
	slog.Info("reader registered", "user", reader.ID)
	writeJSON(w, http.StatusCreated, viewOf(reader))
}

// loginInput is the body of a login request.
type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login checks the reader's credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(in); err != nil {
		writeErr(w, r, err, "")
		return
	}

	reader, err := a.readers.FindByEmail(r.Context(), in.Email)
	if err != nil {
		writeErr(w, r, apperr.Backend("login", err), "Failed to sign in")
		return
	}
	if reader == nil || !a.readers.CheckPassword(reader, in.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if !a.startSession(w, r, reader) {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(reader))
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, reader *models.Reader) bool {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      reader.ID,
		Email:       reader.Email,
		DisplayName: reader.DisplayName,
	})
	if err != nil {
		writeErr(w, r, apperr.Backend("create session", err), "Failed to sign in")
		return false
	}
	return true
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll ends every session of the signed-in reader, this one included.
func (a *Auth) LogoutAll(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	n, err := a.sessions.DestroyAll(r.Context(), sess.UserID)
	if err != nil {
		writeErr(w, r, apperr.Backend("logout all", err), "Failed to sign out")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Path: "/", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]int{"sessions": n})
}

// meResponse describes the signed-in reader.
type meResponse struct {
	User      readerView `json:"user"`
	CSRFToken string     `json:"csrfToken"`
}

// Me returns the signed-in reader and the CSRF token to echo on writes.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	reader, err := a.readers.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeErr(w, r, apperr.Backend("me", err), "Failed to load account")
		return
	}
	if reader == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		User:      viewOf(reader),
		CSRFToken: middleware.CSRFTokenFromCtx(r.Context()),
	})
}
