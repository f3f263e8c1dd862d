/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitlabnotes implements mrcomment.NotesClient on top of the GitLab
// REST API client.
package gitlabnotes

import (
	"context"
	"fmt"
	"net/http"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/time/rate"

	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/mrcomment"
)

// PerPage is the page size used when listing notes; 100 is the GitLab maximum.
const PerPage = 100

// notesAPI is the part of the GitLab notes service used here.
type notesAPI interface {
	ListMergeRequestNotes(pid interface{}, mergeRequest int, opt *gitlab.ListMergeRequestNotesOptions, options ...gitlab.RequestOptionFunc) ([]*gitlab.Note, *gitlab.Response, error)
	CreateMergeRequestNote(pid interface{}, mergeRequest int, opt *gitlab.CreateMergeRequestNoteOptions, options ...gitlab.RequestOptionFunc) (*gitlab.Note, *gitlab.Response, error)
	UpdateMergeRequestNote(pid interface{}, mergeRequest, note int, opt *gitlab.UpdateMergeRequestNoteOptions, options ...gitlab.RequestOptionFunc) (*gitlab.Note, *gitlab.Response, error)
}

// Client lists, creates and updates merge request notes.
type Client struct {
	notes notesAPI
}

var _ mrcomment.NotesClient = (*Client)(nil)

// New returns a Client for the GitLab instance at baseURL (without the
// /api/v4 suffix) authenticating with a private, project or group token.
// httpClient may be nil.
func New(token, baseURL string, httpClient *http.Client) (*Client, error) {
	opts := []gitlab.ClientOptionFunc{
		gitlab.WithBaseURL(baseURL),
		// No client-side throttling, and no probe request to discover limits.
		gitlab.WithCustomLimiter(rate.NewLimiter(rate.Inf, 0)),
	}
	if httpClient != nil {
		opts = append(opts, gitlab.WithHTTPClient(httpClient))
	}

	gl, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &Client{notes: gl.Notes}, nil
}

// ListNotes implements mrcomment.NotesClient.
func (c *Client) ListNotes(ctx context.Context, ref mrcomment.MergeRequestRef, page int) (mrcomment.NotePage, error) {
	opts := &gitlab.ListMergeRequestNotesOptions{
		ListOptions: gitlab.ListOptions{
			Page:    page,
			PerPage: PerPage,
		},
		OrderBy: gitlab.Ptr("created_at"),
		Sort:    gitlab.Ptr("asc"),
	}

	notes, resp, err := c.notes.ListMergeRequestNotes(ref.ProjectID, ref.MergeRequestIID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return mrcomment.NotePage{}, err
	}

	out := mrcomment.NotePage{Notes: make([]mrcomment.Note, 0, len(notes))}
	for _, n := range notes {
		if n == nil {
			continue
		}
		out.Notes = append(out.Notes, toNote(n))
	}
	if resp != nil {
		out.NextPage = resp.NextPage
	}
	return out, nil
}

// CreateNote implements mrcomment.NotesClient.
func (c *Client) CreateNote(ctx context.Context, ref mrcomment.MergeRequestRef, body string) (mrcomment.Note, error) {
	n, _, err := c.notes.CreateMergeRequestNote(ref.ProjectID, ref.MergeRequestIID, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return mrcomment.Note{}, err
	}
	return toNote(n), nil
}

// UpdateNote implements mrcomment.NotesClient.
func (c *Client) UpdateNote(ctx context.Context, ref mrcomment.MergeRequestRef, id int, body string) (mrcomment.Note, error) {
	n, _, err := c.notes.UpdateMergeRequestNote(ref.ProjectID, ref.MergeRequestIID, id, &gitlab.UpdateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return mrcomment.Note{}, err
	}
	return toNote(n), nil
}

func toNote(n *gitlab.Note) mrcomment.Note {
	if n == nil {
		return mrcomment.Note{}
	}
	return mrcomment.Note{ID: n.ID, Body: n.Body}
}
