/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the recorded metrics to the Pushgateway at url under job,
// replacing what was previously pushed for the same grouping.
func (r *Recorder) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(r.registry)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	clog.FromContext(ctx).With("url", url, "job", job).Debug("Pushed GitLab API metrics")
	return nil
}
