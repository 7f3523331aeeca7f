package c360chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type remoteFlags struct {
	baseURL  string
	apiKey   string
	tenantID string
	timeout  time.Duration
}

var remoteEndpoints = map[string]string{
	"health":  "/v1/health",
	"ready":   "/v1/ready",
	"schema":  "/v1/schema",
	"metrics": "/v1/metrics",
}

// newRemoteCmd checks a running c360chat-api. Flags default to
// C360CHAT_API_URL, C360CHAT_API_KEY and C360CHAT_TENANT_ID.
func newRemoteCmd(opts Options) *cobra.Command {
	flags := &remoteFlags{}
	cmd := &cobra.Command{
		Use:       "remote <health|ready|schema|metrics>",
		Short:     "Query a running c360chat API server",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"health", "ready", "schema", "metrics"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := remoteEndpoints[strings.TrimSpace(args[0])]
			if !ok {
				return fmt.Errorf("unknown remote command %q", args[0])
			}
			client := &http.Client{Timeout: flags.timeout}
			endpoint := strings.TrimRight(firstNonEmpty(flags.baseURL, lookupOr(opts, "C360CHAT_API_URL", "http://localhost:8080")), "/") + path
			code, body, err := doRequest(cmd.Context(), client, http.MethodGet, endpoint,
				firstNonEmpty(flags.apiKey, lookupOr(opts, "C360CHAT_API_KEY", "")),
				firstNonEmpty(flags.tenantID, lookupOr(opts, "C360CHAT_TENANT_ID", "")))
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			if code >= 400 {
				return fmt.Errorf("http %d: %s", code, strings.TrimSpace(string(body)))
			}
			if pretty, ok := prettyJSON(body); ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty)
				return nil
			}
			if len(body) > 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(body), "\n"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "API base URL")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "API key for authenticated requests")
	cmd.Flags().StringVar(&flags.tenantID, "tenant-id", "", "tenant header used when auth is disabled")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "HTTP timeout")
	return cmd
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey, tenantID string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}
	if strings.TrimSpace(tenantID) != "" {
		req.Header.Set("X-Tenant-ID", strings.TrimSpace(tenantID))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func lookupOr(opts Options, key, fallback string) string {
	if value, ok := opts.Lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}
