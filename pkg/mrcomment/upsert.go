/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mrcomment

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// Upserter creates or updates the note for a comment slot.
type Upserter struct {
	client NotesClient
}

// NewUpserter returns an Upserter backed by client.
func NewUpserter(client NotesClient) *Upserter {
	return &Upserter{client: client}
}

// Upsert makes the note for slot on ref carry content, and returns its id.
//
// The first note in listing order carrying the slot's marker gets its body
// replaced; later pages are not fetched once it is found. If no note carries
// the marker, a new note is created.
func (u *Upserter) Upsert(ctx context.Context, ref MergeRequestRef, slot, content string) (int, error) {
	log := clog.FromContext(ctx).With(
		"project_id", ref.ProjectID,
		"mr_iid", ref.MergeRequestIID,
		"slot", slot,
	)
	body := Body(content, slot)

	for note, err := range Notes(ctx, u.client, ref) {
		if err != nil {
			return 0, err
		}
		if !HasMarker(note.Body, slot) {
			continue
		}

		if _, err := u.client.UpdateNote(ctx, ref, note.ID, body); err != nil {
			return 0, &TransportError{Op: "update note", Err: err}
		}
		log.With("note_id", note.ID).Info("Updated merge request note")
		return note.ID, nil
	}

	created, err := u.client.CreateNote(ctx, ref, body)
	if err != nil {
		return 0, &TransportError{Op: "create note", Err: err}
	}
	log.With("note_id", created.ID).Info("Created merge request note")
	return created.ID, nil
}
