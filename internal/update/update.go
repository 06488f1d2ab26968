// Package update holds the application version and a small update checker
// that fetches the published version string over HTTP and compares it
// numerically against the running one.
package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Version is the running application version.
const Version = "0.3.0"

// DefaultVersionURL is where the published version string lives.
const DefaultVersionURL = "https://raw.githubusercontent.com/chaz8081/keylock/main/VERSION"

// maxVersionBytes bounds the remote read; a version string is tiny.
const maxVersionBytes = 256

// Check fetches the latest published version string from url. The caller
// controls the timeout through ctx.
func Check(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building version request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching version: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVersionBytes))
	if err != nil {
		return "", fmt.Errorf("reading version: %w", err)
	}

	latest := strings.TrimSpace(string(data))
	if latest == "" {
		return "", fmt.Errorf("empty version response")
	}
	return latest, nil
}

// Compare compares two dotted version strings component by component,
// numerically. Missing components count as zero, so "1.2" == "1.2.0".
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		va := component(as, i)
		vb := component(bs, i)
		if va < vb {
			return -1
		}
		if va > vb {
			return 1
		}
	}
	return 0
}

// Outdated reports whether latest is strictly newer than current.
func Outdated(current, latest string) bool {
	return Compare(latest, current) > 0
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return v
}
