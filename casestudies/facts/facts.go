// Package facts is the number fact client shared by the counter, effects and
// navigation case studies.
package facts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/on-the-ground/composable_go/dependency"
)

// Key binds a Client in a dependency.Values bundle.
const Key = "casestudies.facts"

var ErrUnavailable = errors.New("number fact unavailable")

// Client fetches a trivia fact about a number.
type Client = dependency.Fetch[int, string]

// From returns the Client bound in the effect context.
func From(ctx context.Context) (Client, error) {
	return dependency.Lookup[Client](ctx, Key)
}

// Fetch looks the client up in ctx and asks it about n.
func Fetch(ctx context.Context, n int) (string, error) {
	client, err := From(ctx)
	if err != nil {
		return "", err
	}
	return client(ctx, n)
}

const defaultBaseURL = "http://numbersapi.com"

// Live asks numbersapi.com. A nil httpClient uses a client with a 10s timeout.
func Live(httpClient *http.Client, baseURL string) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return func(ctx context.Context, n int) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d/trivia", baseURL, n), nil)
		if err != nil {
			return "", err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return strings.TrimSpace(string(body)), nil
	}
}

// Offline answers without the network, so demos and tests stay deterministic.
func Offline() Client {
	return func(ctx context.Context, n int) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d is a good number.", n), nil
	}
}

// Failing always fails with ErrUnavailable.
func Failing() Client {
	return func(context.Context, int) (string, error) {
		return "", ErrUnavailable
	}
}
