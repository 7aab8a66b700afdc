// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"tastetrail/internal/apperr"
)

// MaxRecent is the number of recent searches kept per reader.
const MaxRecent = 5

// RecentSearch is a search result the reader opened.
type RecentSearch struct {
	Title          string `json:"title" validate:"notblank,max=200"`
	CollectionType string `json:"collectionType" validate:"collectiontype"`
	Slug           string `json:"slug" validate:"max=200"`
}

// RecentStore keeps each reader's recent searches in Valkey. The sorted set
// users/{uid}/recentSearches orders titles by time of use; the hash
// users/{uid}/recentSearches/items holds the entry for each title.
type RecentStore struct {
	client *redis.Client
	now    func() time.Time
	last   atomic.Int64
}

// NewRecentStore creates a RecentStore backed by the given Valkey client.
func NewRecentStore(client *redis.Client) *RecentStore {
	return &RecentStore{client: client, now: time.Now}
}

// nextScore returns the order score for a new entry: microseconds since the
// epoch, bumped so that scores handed out by this store strictly increase.
// Microsecond values stay below 2^53 and survive the float64 score exactly.
func (s *RecentStore) nextScore() int64 {
	t := s.now().UnixMicro()
	for {
		last := s.last.Load()
		next := max(t, last+1)
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

func recentOrderKey(uid string) string { return "users/" + uid + "/recentSearches" }

func recentItemsKey(uid string) string { return "users/" + uid + "/recentSearches/items" }

// addRecent inserts one entry and trims both keys to ARGV[4] entries in a
// single step.
var addRecent = redis.NewScript(`
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
local overflow = redis.call('ZRANGE', KEYS[1], 0, -(tonumber(ARGV[4]) + 1))
if #overflow > 0 then
  redis.call('ZREM', KEYS[1], unpack(overflow))
  redis.call('HDEL', KEYS[2], unpack(overflow))
end
return #overflow
`)

// Add records s as the reader's most recent search. An earlier entry with
// the same title is replaced. Blank titles are ignored.
func (s *RecentStore) Add(ctx context.Context, uid string, rs RecentSearch) error {
	rs.Title = strings.TrimSpace(rs.Title)
	if rs.Title == "" {
		return nil
	}
	doc, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encode recent search: %w", err)
	}

	keys := []string{recentOrderKey(uid), recentItemsKey(uid)}
	score := s.nextScore()
	if err := addRecent.Run(ctx, s.client, keys, score, rs.Title, doc, MaxRecent).Err(); err != nil {
		return apperr.Backend("add recent search", err)
	}
	return nil
}

// List returns the reader's recent searches, newest first.
func (s *RecentStore) List(ctx context.Context, uid string) ([]RecentSearch, error) {
	titles, err := s.client.ZRevRange(ctx, recentOrderKey(uid), 0, MaxRecent-1).Result()
	if err != nil {
		return nil, apperr.Backend("list recent searches", err)
	}
	out := make([]RecentSearch, 0, len(titles))
	if len(titles) == 0 {
		return out, nil
	}

	vals, err := s.client.HMGet(ctx, recentItemsKey(uid), titles...).Result()
	if err != nil {
		return nil, apperr.Backend("list recent searches", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			out = append(out, RecentSearch{Title: titles[i]})
			continue
		}
		var rs RecentSearch
		if err := json.Unmarshal([]byte(raw), &rs); err != nil {
			return nil, fmt.Errorf("decode recent search %q: %w", titles[i], err)
		}
		out = append(out, rs)
	}
	return out, nil
}

// Remove deletes the entry with the given title, if any.
func (s *RecentStore) Remove(ctx context.Context, uid, title string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, recentOrderKey(uid), title)
		pipe.HDel(ctx, recentItemsKey(uid), title)
		return nil
	})
	if err != nil {
		return apperr.Backend("remove recent search", err)
	}
	return nil
}

// Clear deletes all of the reader's recent searches.
func (s *RecentStore) Clear(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, recentOrderKey(uid), recentItemsKey(uid)).Err(); err != nil {
		return apperr.Backend("clear recent searches", err)
	}
	return nil
}
