// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strings"
)

// TokenSource yields the current bearer token. Implementations read from
// persistent storage on every call so a token written by one flow is visible
// to the next request without restarting the client.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, bool)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// BearerAuth returns a request interceptor that attaches "Authorization:
// Bearer <token>" to every request whose path is not in skipPaths. Requests
// to the skipped paths (login, registration) go out unauthenticated even
// when a stale token is present.
func BearerAuth(tokens TokenSource, skipPaths ...string) RequestInterceptor {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(ctx context.Context, cfg *RequestConfig) error {
		path := cfg.Path
		if idx := strings.IndexByte(path, '?'); idx >= 0 {
			path = path[:idx]
		}
		if _, skipped := skip[path]; skipped {
			return nil
		}
		token, ok := tokens.Token(ctx)
		if !ok || token == "" {
			return nil
		}
		cfg.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// ActivityRecorder returns a response interceptor that invokes record after
// every successful (2xx) response. The session monitor reads the recorded
// timestamp to decide idle expiry, so any authenticated traffic counts as
// activity.
func ActivityRecorder(record func(ctx context.Context)) ResponseInterceptor {
	return func(ctx context.Context, resp *Response) {
		if resp.Status >= 200 && resp.Status <= 299 {
			record(ctx)
		}
	}
}
