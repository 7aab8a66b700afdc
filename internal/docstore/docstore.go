// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docstore keeps reader-owned documents in Valkey: reader accounts,
// likes and saved collections. Keys are laid out like document paths
// (users/{uid}, collections/{id}, users/{uid}/collections/{id}) and every
// value is a JSON document. Writes that touch more than one document go
// through a single MULTI/EXEC transaction.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic WATCH retries before giving up.
const maxTxRetries = 5

// errTxContended is returned when a watched key kept changing.
var errTxContended = errors.New("transaction contended")

func readerKey(uid string) string          { return "users/" + uid }
func readerEmailKey(email string) string   { return "readers/email/" + email }
func collectionKey(id string) string       { return "collections/" + id }
func collectionOrderKey(uid string) string { return "users/" + uid + "/collections" }

func collectionIndexKey(uid, id string) string {
	return "users/" + uid + "/collections/" + id
}

// getJSON loads and decodes a document. Returns false if the key is absent.
func getJSON(ctx context.Context, c redis.Cmdable, key string, v any) (bool, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// watch runs fn inside WATCH on keys, retrying when another client
// modified a watched key before EXEC.
func watch(ctx context.Context, client *redis.Client, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTxContended
}
