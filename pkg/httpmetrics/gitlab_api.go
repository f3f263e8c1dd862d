/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	pattern *regexp.Regexp
	bucket  string
}

// GitLab REST API endpoints this tool talks to.
// Paths are matched after the /api/v4 prefix is removed.
var gitlabAPIPatterns = []pathPattern{{
	// https://docs.gitlab.com/ee/api/notes.html#list-all-merge-request-notes
	// https://docs.gitlab.com/ee/api/notes.html#create-new-merge-request-note
	pattern: regexp.MustCompile(`^/projects/[^/]+/merge_requests/\d+/notes$`),
	bucket:  "/projects/{id}/merge_requests/{iid}/notes",
}, {
	// https://docs.gitlab.com/ee/api/notes.html#modify-existing-merge-request-note
	pattern: regexp.MustCompile(`^/projects/[^/]+/merge_requests/\d+/notes/\d+$`),
	bucket:  "/projects/{id}/merge_requests/{iid}/notes/{note_id}",
}, {
	// https://docs.gitlab.com/ee/api/merge_requests.html#get-single-mr
	pattern: regexp.MustCompile(`^/projects/[^/]+/merge_requests/\d+$`),
	bucket:  "/projects/{id}/merge_requests/{iid}",
}, {
	// https://docs.gitlab.com/ee/api/projects.html#get-single-project
	pattern: regexp.MustCompile(`^/projects/[^/]+$`),
	bucket:  "/projects/{id}",
}}

func bucketizePath(path string) string {
	path = strings.TrimPrefix(path, "/api/v4")
	for _, p := range gitlabAPIPatterns {
		if p.pattern.MatchString(path) {
			return p.bucket
		}
	}
	return "other"
}
