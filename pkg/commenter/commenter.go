/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package commenter posts and idempotently updates comments on GitLab merge
// requests, resolving its settings from explicit options and the GitLab CI
// environment.
package commenter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/gitlabnotes"
	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/httpmetrics"
	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/mrcomment"
)

// MetricsJob is the Pushgateway job name metrics are pushed under.
const MetricsJob = "gitlab-mr-commenter"

// Commenter posts comments to the configured GitLab instance.
type Commenter struct {
	cfg      *Config
	upserter *mrcomment.Upserter
	recorder *httpmetrics.Recorder
	stdout   io.Writer
}

// New resolves the configuration and builds the GitLab client.
// Nothing is sent to GitLab until Post is called.
func New(ctx context.Context, opts Options) (*Commenter, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	c := &Commenter{
		cfg:      cfg,
		recorder: httpmetrics.NewRecorder(),
		stdout:   opts.Stdout,
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if cfg.Local() {
		return c, nil
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Transport = c.recorder.WrapTransport(hc.Transport)

	client, err := gitlabnotes.New(cfg.Token, cfg.BaseURL, hc)
	if err != nil {
		return nil, err
	}
	c.upserter = mrcomment.NewUpserter(client)
	return c, nil
}

// Config returns the resolved configuration.
func (c *Commenter) Config() Config { return *c.cfg }

// Post upserts content into slot on the configured merge request and returns
// the note id. An empty slot means mrcomment.DefaultSlot. In local fallback
// mode the comment is printed and the returned id is 0.
func (c *Commenter) Post(ctx context.Context, slot, content string) (int, error) {
	if c.cfg.Local() {
		return 0, c.printLocal(content)
	}
	ref, err := c.cfg.MergeRequest()
	if err != nil {
		return 0, err
	}
	return c.PostTo(ctx, ref, slot, content)
}

// PostTo is Post with an explicit merge request.
func (c *Commenter) PostTo(ctx context.Context, ref mrcomment.MergeRequestRef, slot, content string) (int, error) {
	if c.cfg.Local() {
		return 0, c.printLocal(content)
	}
	if slot == "" {
		slot = mrcomment.DefaultSlot
	}
	return c.upserter.Upsert(ctx, ref, slot, content)
}

// Flush pushes the recorded API request metrics when a Pushgateway is configured.
func (c *Commenter) Flush(ctx context.Context) error {
	if c.cfg.PushgatewayURL == "" || c.cfg.Local() {
		return nil
	}
	grouping := map[string]string{}
	if c.cfg.ProjectID != 0 {
		grouping["project_id"] = strconv.Itoa(c.cfg.ProjectID)
	}
	if c.cfg.MergeRequestIID != 0 {
		grouping["mr_iid"] = strconv.Itoa(c.cfg.MergeRequestIID)
	}
	return c.recorder.Push(ctx, c.cfg.PushgatewayURL, MetricsJob, grouping)
}

func (c *Commenter) printLocal(content string) error {
	w := bufio.NewWriter(c.stdout)
	fmt.Fprintln(w, "== Merge request output: ==")
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(w, "## %s\n", line)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write local output: %w", err)
	}
	return nil
}

// PostComment builds a Commenter from opts, posts content into slot on the
// configured merge request, and flushes metrics.
func PostComment(ctx context.Context, opts Options, slot, content string) (int, error) {
	c, err := New(ctx, opts)
	if err != nil {
		return 0, err
	}
	id, err := c.Post(ctx, slot, content)
	if err != nil {
		return 0, err
	}
	if err := c.Flush(ctx); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Failed to push metrics")
	}
	return id, nil
}
