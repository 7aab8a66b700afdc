// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"tastetrail/internal/apperr"
	"tastetrail/internal/models"
)

// ReaderStore handles reader accounts and their liked posts. A reader is
// stored under users/{uid}; readers/email/{email} maps a normalized email
// address to the uid.
type ReaderStore struct {
	client *redis.Client
}

// NewReaderStore creates a ReaderStore backed by the given Valkey client.
func NewReaderStore(client *redis.Client) *ReaderStore {
	return &ReaderStore{client: client}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new reader with a bcrypt-hashed password. Returns
// apperr.ErrConflict if the email address is already registered.
func (s *ReaderStore) Create(ctx context.Context, email, password, displayName string) (*models.Reader, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	r := &models.Reader{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		LikedPosts:   []models.ContentReference{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode reader: %w", err)
	}

	emailKey := readerEmailKey(r.Email)
	err = watch(ctx, s.client, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, emailKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("email %s: %w", r.Email, apperr.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, emailKey, r.ID, 0)
			pipe.Set(ctx, readerKey(r.ID), doc, 0)
			return nil
		})
		return err
	}, emailKey)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}
	return r, nil
}

// FindByID retrieves a reader by id. Returns nil if not found.
func (s *ReaderStore) FindByID(ctx context.Context, id string) (*models.Reader, error) {
	var r models.Reader
	ok, err := getJSON(ctx, s.client, readerKey(id), &r)
	if err != nil {
		return nil, fmt.Errorf("find reader by id: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// FindByEmail retrieves a reader by email address. Returns nil if not found.
func (s *ReaderStore) FindByEmail(ctx context.Context, email string) (*models.Reader, error) {
	id, err := s.client.Get(ctx, readerEmailKey(normalizeEmail(email))).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reader by email: %w", err)
	}
	return s.FindByID(ctx, id)
}

// CheckPassword compares a plaintext password against the reader's hash.
func (s *ReaderStore) CheckPassword(r *models.Reader, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil
}

// LikedPosts returns the reader's liked references, most recent last.
// Returns an empty list for unknown readers.
func (s *ReaderStore) LikedPosts(ctx context.Context, id string) ([]models.ContentReference, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.LikedPosts == nil {
		return []models.ContentReference{}, nil
	}
	return r.LikedPosts, nil
}

// ToggleLike adds ref to the reader's likes, or removes it if already
// liked. Returns whether the post is liked afterwards.
func (s *ReaderStore) ToggleLike(ctx context.Context, id string, ref models.ContentReference) (bool, error) {
	key := readerKey(id)
	var liked bool

	err := watch(ctx, s.client, func(tx *redis.Tx) error {
		var r models.Reader
		ok, err := getJSON(ctx, tx, key, &r)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("reader %s: %w", id, apperr.ErrNotFound)
		}

		if i := slices.Index(r.LikedPosts, ref); i >= 0 {
			r.LikedPosts = slices.Delete(r.LikedPosts, i, i+1)
			liked = false
		} else {
			r.LikedPosts = append(r.LikedPosts, ref)
			liked = true
		}
		r.UpdatedAt = time.Now().UTC()

		doc, err := json.Marshal(&r)
		if err != nil {
			return fmt.Errorf("encode reader: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return liked, nil
}
