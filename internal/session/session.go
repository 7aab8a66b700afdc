// Package session keeps signed-in readers in Valkey. The browser holds an
// opaque id in a cookie; the reader snapshot lives under sessions/{id} with
// a sliding expiry, and users/{uid}/sessions indexes every live session of
// a reader so they can all be ended at once.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"tastetrail/internal/models"
)

const (
	// CookieName is the session cookie.
	CookieName = "tt_session"

	// DefaultTTL is the idle lifetime; every authenticated request renews it.
	DefaultTTL = 14 * 24 * time.Hour

	idBytes = 32
)

func sessionKey(id string) string   { return "sessions/" + id }
func indexKey(userID string) string { return "users/" + userID + "/sessions" }

// Data is the reader snapshot stored with a session.
type Data struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Identity returns the caller handle passed to service operations.
func (d *Data) Identity() *models.Identity {
	if d == nil {
		return nil
	}
	return &models.Identity{UserID: d.UserID, DisplayName: d.DisplayName}
}

// Store manages reader sessions.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a Store. secure marks the cookie Secure.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// WithTTL returns a copy of the store using ttl as the idle lifetime.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	c := *s
	c.ttl = ttl
	return &c
}

// Create stores data under a new session id, adds it to the reader's
// index and sets the cookie.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	if data.UserID == "" {
		return "", errors.New("session create: missing user id")
	}
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(buf)

	data.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKey(id), payload, s.ttl)
		p.SAdd(ctx, indexKey(data.UserID), id)
		p.Expire(ctx, indexKey(data.UserID), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	s.setCookie(w, id, int(s.ttl.Seconds()))
	return id, nil
}

// Get loads the session named by the request cookie and renews its expiry.
// A missing cookie or an expired session yields nil without error.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, sessionKey(cookie.Value), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	s.client.Expire(ctx, indexKey(data.UserID), s.ttl)
	return &data, nil
}

// Destroy ends the request's session and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s.setCookie(w, "", -1)

	key := sessionKey(cookie.Value)
	payload, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	var data Data
	if json.Unmarshal(payload, &data) == nil && data.UserID != "" {
		if err := s.client.SRem(ctx, indexKey(data.UserID), cookie.Value).Err(); err != nil {
			return fmt.Errorf("session destroy: %w", err)
		}
	}
	return nil
}

// DestroyAll ends every session of the reader and returns how many were
// still live.
func (s *Store) DestroyAll(ctx context.Context, userID string) (int, error) {
	ids, err := s.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("session destroy all: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	var live *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(keys) > 0 {
			live = p.Del(ctx, keys...)
		}
		p.Del(ctx, indexKey(userID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("session destroy all: %w", err)
	}
	if live == nil {
		return 0, nil
	}
	return int(live.Val()), nil
}

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
