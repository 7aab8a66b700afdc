// Package models defines the data structures shared by the CMS store, the
// document store and the API layer.
package models

import "time"

// Reader is a site visitor account. Readers live in the document store
// under users/{uid}, not in the CMS.
type Reader struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"passwordHash"`
	DisplayName  string             `json:"displayName"`
	LikedPosts   []ContentReference `json:"likedPosts"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// OwnerName returns the name recorded on collections the reader creates.
func (r *Reader) OwnerName() string {
	if r.DisplayName == "" {
		return AnonymousOwner
	}
	return r.DisplayName
}

// Identity is the authenticated caller of an operation. A nil *Identity
// means the caller is anonymous.
type Identity struct {
	UserID      string
	DisplayName string
}

// OwnerName returns the display name, falling back to AnonymousOwner.
func (i *Identity) OwnerName() string {
	if i.DisplayName == "" {
		return AnonymousOwner
	}
	return i.DisplayName
}

// SortKey selects an ordering for dashboard lists.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortAlphabetical SortKey = "alphabetical"
	SortHighest      SortKey = "highest"
)

// FilterState is the reader's dashboard filter selection. It is never persisted.
type FilterState struct {
	Groups []Group `json:"collections"`
	Sort   SortKey `json:"sort"`
}
