/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commenter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"

	"github.com/chainguard-dev/gitlab-mr-commenter/pkg/mrcomment"
)

// Options are explicit settings. Zero values fall back to the environment.
type Options struct {
	// Token is a GitLab personal, project or group access token.
	Token string
	// APIURL is the GitLab API base, e.g. https://gitlab.com/api/v4.
	APIURL string
	// ProjectID is the numeric project id.
	ProjectID int
	// MergeRequestIID is the project-scoped merge request number.
	MergeRequestIID int
	// LocalFallback prints comments to Stdout instead of failing when no
	// usable API URL is configured.
	LocalFallback bool
	// PushgatewayURL, when set, receives API request metrics on Flush.
	PushgatewayURL string

	// HTTPClient is used for API calls. Its transport gets instrumented.
	HTTPClient *http.Client
	// Stdout receives local fallback output; defaults to os.Stdout.
	Stdout io.Writer
	// Lookuper resolves environment variables; defaults to the process environment.
	Lookuper envconfig.Lookuper
}

// environment is what CI provides.
type environment struct {
	Token           string `env:"GITLAB_MR_PLAN_TOKEN"`
	LegacyToken     string `env:"GITLAB_TOKEN"`
	APIURL          string `env:"CI_API_V4_URL"`
	ProjectID       string `env:"CI_PROJECT_ID"`
	MergeRequestIID string `env:"CI_MERGE_REQUEST_IID"`
	LocalFallback   bool   `env:"GITLAB_MR_COMMENTER_LOCAL_FALLBACK"`
	PushgatewayURL  string `env:"GITLAB_MR_COMMENTER_PUSHGATEWAY_URL"`
}

// Config is the resolved configuration for one invocation.
type Config struct {
	Token string
	// BaseURL is the instance URL, without the /api/v4 suffix. It is empty
	// in local fallback mode.
	BaseURL         string
	ProjectID       int
	MergeRequestIID int
	LocalFallback   bool
	PushgatewayURL  string
}

// Local reports whether comments are printed instead of posted.
func (c *Config) Local() bool {
	return c.LocalFallback && c.BaseURL == ""
}

// MergeRequest returns the configured target, or a *mrcomment.ConfigError
// naming whichever identifier is missing.
func (c *Config) MergeRequest() (mrcomment.MergeRequestRef, error) {
	if c.ProjectID == 0 {
		return mrcomment.MergeRequestRef{}, &mrcomment.ConfigError{
			Setting: "project id",
			Sources: []string{"--project-id", "CI_PROJECT_ID"},
		}
	}
	if c.MergeRequestIID == 0 {
		return mrcomment.MergeRequestRef{}, &mrcomment.ConfigError{
			Setting: "merge request iid",
			Sources: []string{"--mr-iid", "CI_MERGE_REQUEST_IID"},
		}
	}
	return mrcomment.MergeRequestRef{
		ProjectID:       c.ProjectID,
		MergeRequestIID: c.MergeRequestIID,
	}, nil
}

// LoadConfig resolves opts against the environment. Explicit options win.
// The token and API URL are validated here; the merge request identifiers
// are validated by Config.MergeRequest.
func LoadConfig(ctx context.Context, opts Options) (*Config, error) {
	lookuper := opts.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var env environment
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return nil, &mrcomment.ConfigError{Setting: "environment", Err: err}
	}

	cfg := &Config{
		Token:          firstNonEmpty(opts.Token, env.Token, env.LegacyToken),
		LocalFallback:  opts.LocalFallback || env.LocalFallback,
		PushgatewayURL: firstNonEmpty(opts.PushgatewayURL, env.PushgatewayURL),
	}

	var err error
	if cfg.ProjectID, err = resolveID(opts.ProjectID, env.ProjectID, "project id"); err != nil {
		return nil, err
	}
	if cfg.MergeRequestIID, err = resolveID(opts.MergeRequestIID, env.MergeRequestIID, "merge request iid"); err != nil {
		return nil, err
	}

	rawURL := firstNonEmpty(opts.APIURL, env.APIURL)
	cfg.BaseURL, err = instanceURL(rawURL)
	if err != nil {
		if !cfg.LocalFallback {
			return nil, err
		}
		clog.FromContext(ctx).With("error", err).Warn("No usable GitLab API URL, comments will be printed locally")
		cfg.BaseURL = ""
		return cfg, nil
	}

	if cfg.Token == "" {
		return nil, &mrcomment.ConfigError{
			Setting: "GitLab token",
			Sources: []string{"--token", "GITLAB_MR_PLAN_TOKEN", "GITLAB_TOKEN"},
		}
	}

	clog.FromContext(ctx).With(
		"base_url", cfg.BaseURL,
		"project_id", cfg.ProjectID,
		"mr_iid", cfg.MergeRequestIID,
	).Debug("Resolved configuration")
	return cfg, nil
}

// instanceURL turns a GitLab API URL into the instance URL the client expects.
func instanceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &mrcomment.ConfigError{
			Setting: "GitLab API URL",
			Sources: []string{"--api-url", "CI_API_V4_URL"},
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &mrcomment.ConfigError{Setting: "GitLab API URL", Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &mrcomment.ConfigError{
			Setting: "GitLab API URL",
			Err:     fmt.Errorf("%q is not an absolute http(s) URL", raw),
		}
	}

	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api/v4")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func resolveID(explicit int, env, setting string) (int, error) {
	if explicit < 0 {
		return 0, &mrcomment.ConfigError{Setting: setting, Err: fmt.Errorf("%d is not a positive number", explicit)}
	}
	if explicit != 0 {
		return explicit, nil
	}

	env = strings.TrimSpace(env)
	if env == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(env)
	if err != nil {
		return 0, &mrcomment.ConfigError{Setting: setting, Err: err}
	}
	if id <= 0 {
		return 0, &mrcomment.ConfigError{Setting: setting, Err: fmt.Errorf("%d is not a positive number", id)}
	}
	return id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
