// Package update checks whether a newer headlines release is published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReleasesURL is the GitHub API endpoint for the latest release.
const ReleasesURL = "https://api.github.com/repos/matheuskafuri/headlines/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	Current string
	Latest  string
}

// Newer reports whether Latest differs from the running version.
func (r Result) Newer() bool {
	return r.Latest != "" && r.Latest != r.Current
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Check asks releasesURL for the latest tag. Development builds ("dev")
// never report an update.
func Check(ctx context.Context, client *http.Client, releasesURL, currentVersion string) (Result, error) {
	res := Result{Current: strings.TrimPrefix(currentVersion, "v")}
	if res.Current == "dev" {
		return res, nil
	}
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return res, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("checking releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("checking releases: status %d", resp.StatusCode)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return res, fmt.Errorf("decoding release: %w", err)
	}
	res.Latest = strings.TrimPrefix(release.TagName, "v")
	return res, nil
}
