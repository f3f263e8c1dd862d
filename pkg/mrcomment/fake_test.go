/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mrcomment

import (
	"context"
	"errors"
)

// fakeClient keeps the notes of a single merge request in memory.
type fakeClient struct {
	notes    []Note
	pageSize int
	nextID   int

	listErr   error
	createErr error
	updateErr error

	pagesListed []int
	created     int
	updated     []int
}

func newFakeClient(pageSize int, notes ...Note) *fakeClient {
	f := &fakeClient{pageSize: pageSize, nextID: 1000}
	f.notes = append(f.notes, notes...)
	return f
}

func (f *fakeClient) ListNotes(_ context.Context, _ MergeRequestRef, page int) (NotePage, error) {
	f.pagesListed = append(f.pagesListed, page)
	if f.listErr != nil {
		return NotePage{}, f.listErr
	}

	start := (page - 1) * f.pageSize
	if start >= len(f.notes) {
		return NotePage{}, nil
	}
	end := min(start+f.pageSize, len(f.notes))

	resp := NotePage{Notes: append([]Note(nil), f.notes[start:end]...)}
	if end < len(f.notes) {
		resp.NextPage = page + 1
	}
	return resp, nil
}

func (f *fakeClient) CreateNote(_ context.Context, _ MergeRequestRef, body string) (Note, error) {
	if f.createErr != nil {
		return Note{}, f.createErr
	}
	f.nextID++
	n := Note{ID: f.nextID, Body: body}
	f.notes = append(f.notes, n)
	f.created++
	return n, nil
}

func (f *fakeClient) UpdateNote(_ context.Context, _ MergeRequestRef, id int, body string) (Note, error) {
	if f.updateErr != nil {
		return Note{}, f.updateErr
	}
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Body = body
			f.updated = append(f.updated, id)
			return f.notes[i], nil
		}
	}
	return Note{}, errors.New("404 Not found")
}

// marked returns the notes carrying the marker for slot.
func (f *fakeClient) marked(slot string) []Note {
	var out []Note
	for _, n := range f.notes {
		if HasMarker(n.Body, slot) {
			out = append(out, n)
		}
	}
	return out
}
