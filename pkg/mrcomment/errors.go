/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mrcomment

import (
	"fmt"
	"strings"
)

// ConfigError reports a required setting that is missing or unusable.
// It is always returned before any request is sent to GitLab.
type ConfigError struct {
	// Setting is the human name of the setting, e.g. "project id".
	Setting string
	// Sources lists where the setting may come from, in priority order.
	Sources []string
	// Err is set when a value was present but could not be used.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %v", e.Setting, e.Err)
	}
	if len(e.Sources) == 0 {
		return fmt.Sprintf("%s not provided", e.Setting)
	}
	return fmt.Sprintf("%s not provided: set %s", e.Setting, strings.Join(e.Sources, " or "))
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError wraps a failed GitLab API call: network failures,
// authentication rejections and non-2xx responses alike.
type TransportError struct {
	// Op is the operation that failed: "list notes", "create note" or "update note".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
