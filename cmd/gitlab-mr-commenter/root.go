/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/commenter"
	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/mrcomment"
)

const epilog = `Environment variables (used when flags are omitted):
  CI_PROJECT_ID                        GitLab project ID
  CI_MERGE_REQUEST_IID                 Merge request internal ID
  CI_API_V4_URL                        GitLab API base URL
  GITLAB_MR_PLAN_TOKEN                 API token (preferred)
  GITLAB_TOKEN                         API token (fallback)
  GITLAB_MR_COMMENTER_LOCAL_FALLBACK   Print instead of failing without an API URL
  GITLAB_MR_COMMENTER_PUSHGATEWAY_URL  Prometheus Pushgateway for request metrics
`

var errEmptyInput = errors.New("stdin is empty, nothing to post")

// newRootCommand builds the CLI. lookuper and httpClient may be nil to use
// the process environment and a default client.
func newRootCommand(lookuper envconfig.Lookuper, httpClient *http.Client) *cobra.Command {
	var (
		opts    commenter.Options
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "gitlab-mr-commenter [COMMENT_ID]",
		Short: "Post or update a GitLab merge request comment",
		Long: "Post or update a GitLab MR comment identified by COMMENT_ID. Content is read from stdin.\n" +
			"Re-running with the same COMMENT_ID updates the existing comment in place.\n\n" + epilog,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			ctx := clog.WithLogger(cmd.Context(), clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			slot := mrcomment.DefaultSlot
			if len(args) == 1 {
				slot = args[0]
			}

			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if strings.TrimSpace(string(content)) == "" {
				return errEmptyInput
			}

			opts.Lookuper = lookuper
			opts.HTTPClient = httpClient
			opts.Stdout = cmd.OutOrStdout()

			id, err := commenter.PostComment(ctx, opts, slot, string(content))
			if err != nil {
				return err
			}
			if id != 0 {
				clog.FromContext(ctx).With("note_id", id, "slot", slot).Info("Merge request comment is up to date")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.ProjectID, "project-id", 0, "GitLab project ID. Defaults to $CI_PROJECT_ID.")
	cmd.Flags().IntVar(&opts.MergeRequestIID, "mr-iid", 0, "Merge request internal ID. Defaults to $CI_MERGE_REQUEST_IID.")
	cmd.Flags().StringVar(&opts.Token, "token", "", "GitLab API token. Defaults to $GITLAB_MR_PLAN_TOKEN or $GITLAB_TOKEN.")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", "", "GitLab API base URL. Defaults to $CI_API_V4_URL.")
	cmd.Flags().BoolVar(&opts.LocalFallback, "local-fallback", false, "Print the comment to stdout when no API URL is available.")
	cmd.Flags().StringVar(&opts.PushgatewayURL, "pushgateway-url", "", "Push API request metrics to this Prometheus Pushgateway.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each GitLab API request.")

	return cmd
}
