// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package collections

import (
	"encoding/base64"
	"fmt"

	"github.com/goccy/go-json"

	"tastetrail/internal/apperr"
	"tastetrail/internal/docstore"
)

// cursor is the decoded form of an opaque listing cursor. It carries the
// last returned index handle and the total counted on the first page.
type cursor struct {
	After docstore.Handle `json:"a"`
	Total int             `json:"t"`
}

func encodeCursor(c cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (cursor, error) {
	var c cursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("decode cursor: %w", apperr.ErrInvalid)
	}
	if err := json.Unmarshal(raw, &c); err != nil || c.After.ID == "" {
		return c, fmt.Errorf("decode cursor: %w", apperr.ErrInvalid)
	}
	return c, nil
}
