/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mrcomment

import (
	"context"
	"iter"
)

// MergeRequestRef identifies a merge request by project and internal id.
type MergeRequestRef struct {
	ProjectID       int
	MergeRequestIID int
}

// Note is a note on a merge request.
type Note struct {
	ID   int
	Body string
}

// NotePage is one page of a notes listing.
type NotePage struct {
	Notes []Note
	// NextPage is the page to request next, or 0 when this was the last page.
	NextPage int
}

// NotesClient is the subset of the GitLab API the upserter needs.
type NotesClient interface {
	// ListNotes returns the given page (1-based) of notes on ref, oldest first.
	ListNotes(ctx context.Context, ref MergeRequestRef, page int) (NotePage, error)
	// CreateNote adds a note with body to ref.
	CreateNote(ctx context.Context, ref MergeRequestRef, body string) (Note, error)
	// UpdateNote replaces the body of note id on ref.
	UpdateNote(ctx context.Context, ref MergeRequestRef, id int, body string) (Note, error)
}

// Notes lists the notes on ref in listing order, fetching pages as the
// sequence is consumed. Breaking out of the loop stops further requests.
// A listing failure is yielded once as a *TransportError and ends the sequence.
func Notes(ctx context.Context, client NotesClient, ref MergeRequestRef) iter.Seq2[Note, error] {
	return func(yield func(Note, error) bool) {
		page := 1
		for {
			resp, err := client.ListNotes(ctx, ref, page)
			if err != nil {
				yield(Note{}, &TransportError{Op: "list notes", Err: err})
				return
			}
			for _, n := range resp.Notes {
				if !yield(n, nil) {
					return
				}
			}
			// Guard against a server that keeps pointing backwards.
			if resp.NextPage <= page {
				return
			}
			page = resp.NextPage
		}
	}
}
