// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Comment is a reader comment and/or rating attached to a content document.
// PostTitle is populated only by queries that join the referenced document;
// it is nil when the document no longer exists.
type Comment struct {
	ID         int64            `json:"id"`
	Comment    string           `json:"comment"`
	Rating     *int             `json:"rating"`
	UserID     string           `json:"firebaseUID"`
	Name       string           `json:"name"`
	AdminReply *string          `json:"adminReply,omitempty"`
	Status     CommentStatus    `json:"status"`
	ParentID   *string          `json:"parentId,omitempty"`
	Post       ContentReference `json:"post"`
	PostTitle  *string          `json:"postTitle,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// IsRated reports whether the comment carries a rating.
func (c *Comment) IsRated() bool {
	return c.Rating != nil
}

// Title returns the referenced document's title, or "" if it is unknown.
func (c *Comment) Title() string {
	if c.PostTitle == nil {
		return ""
	}
	return *c.PostTitle
}
