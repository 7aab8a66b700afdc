// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"time"
)

// AnonymousOwner is the owner name recorded when a reader has no display name.
const AnonymousOwner = "Anonymous"

// UserCollection is a named, reader-owned list of content references.
// It is stored in the document store under collections/{id}.
type UserCollection struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"ownerId"`
	OwnerName   string             `json:"ownerName"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Posts       []ContentReference `json:"posts"`
}

// Contains reports whether the reference is already saved in the collection.
func (c *UserCollection) Contains(ref ContentReference) bool {
	return slices.Contains(c.Posts, ref)
}

// Clone returns a deep copy of the collection.
func (c *UserCollection) Clone() *UserCollection {
	if c == nil {
		return nil
	}
	out := *c
	out.Posts = slices.Clone(c.Posts)
	if out.Posts == nil {
		out.Posts = []ContentReference{}
	}
	return &out
}

// CollectionIndexEntry is the owner's index record for a collection, stored
// under users/{uid}/collections/{id}.
type CollectionIndexEntry struct {
	CollectionID string    `json:"collectionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PostAction is the mutation applied to a collection's posts.
type PostAction string

const (
	PostActionAdd    PostAction = "add"
	PostActionRemove PostAction = "remove"
)
