/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package mrcomment maintains a single, always-current note per "comment slot"
// on a GitLab merge request.
//
// Every note written by this package ends with a hidden HTML marker naming its
// slot:
//
//	<!-- gitlab-mr-commenter id="plan-production" -->
//
// On each Upsert the notes of the merge request are listed in creation order
// and the first note carrying the slot's marker has its body replaced. When no
// note carries the marker a new one is created.
//
// # Usage
//
//	u := mrcomment.NewUpserter(client)
//	id, err := u.Upsert(ctx, mrcomment.MergeRequestRef{ProjectID: 123, MergeRequestIID: 45},
//	    "plan-production", "## Plan\n\nNo changes.")
//
// # Limitations
//
// Two invocations racing on the same merge request and slot can both miss the
// marker and both create a note. Nothing here locks or compares versions; the
// intended callers are sequential CI pipeline stages. When duplicates exist,
// only the first in listing order is updated and the rest are left alone.
package mrcomment
