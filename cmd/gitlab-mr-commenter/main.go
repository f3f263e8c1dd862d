/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// gitlab-mr-commenter posts or updates a GitLab merge request comment
// identified by a comment slot. The comment body is read from stdin.
//
// Usage:
//
//	echo "## Plan" | gitlab-mr-commenter plan-production
//	echo "## Plan" | gitlab-mr-commenter --project-id 123 --mr-iid 45 plan-production
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A .env file is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if err := newRootCommand(nil, nil).ExecuteContext(ctx); err != nil {
		clog.ErrorContextf(ctx, "gitlab-mr-commenter: %v", err)
		cancel()
		os.Exit(1)
	}
}
