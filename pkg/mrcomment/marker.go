/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mrcomment

import (
	"fmt"
	"strings"
)

// DefaultSlot is the slot used when the caller does not name one.
const DefaultSlot = "gitlab-mr-commenter"

// Marker returns the hidden HTML marker identifying slot.
// The format must stay byte-for-byte compatible with other tools writing the
// same markers, so slot is quoted with %q.
func Marker(slot string) string {
	return fmt.Sprintf("<!-- gitlab-mr-commenter id=%q -->", slot)
}

// Body returns the full note body for content in slot.
func Body(content, slot string) string {
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString(Marker(slot))
	return b.String()
}

// HasMarker reports whether body carries the marker for slot.
func HasMarker(body, slot string) bool {
	return strings.Contains(body, Marker(slot))
}
