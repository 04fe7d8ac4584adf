package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// UserAgent is sent on every outgoing HTTP request, as required by the
// Modrinth API guidelines.
const UserAgent = "packdock/packdock (modpack deploy engine)"

// ReencodeURL re-encodes URLs for RFC3986 compliance, as not all pack sources
// encode them properly
func ReencodeURL(u string) (string, error) {
	// Go's URL library isn't entirely RFC3986 compliant :(
	// Manually replace [ and ] with %5B and %5D
	u = strings.ReplaceAll(u, "[", "%5B")
	u = strings.ReplaceAll(u, "]", "%5D")
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %s, %v", u, err)
	}
	return parsed.String(), nil
}

// GetWithUA does a GET request with the project user agent and the given
// Accept header, returning an error for non-2xx statuses.
func GetWithUA(url string, accept string) (*http.Response, error) {
	return GetWithUAContext(context.Background(), url, accept)
}

// GetWithUAContext is GetWithUA honoring the caller's cancellation and
// deadline.
func GetWithUAContext(ctx context.Context, url string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, fmt.Errorf("unexpected response status: %s", res.Status)
	}
	return res, nil
}
