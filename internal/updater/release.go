// internal/updater/release.go
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// Release is one entry of the release feed
type Release struct {
	Version    string    `json:"version"`
	URL        string    `json:"url"`
	SHA256     string    `json:"sha256,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	ReleasedAt time.Time `json:"released_at,omitempty"`
}

func (r *Release) validate() error {
	if r.Version == "" {
		return errors.New("release feed: version is empty")
	}
	if !semver.IsValid(canonical(r.Version)) {
		return fmt.Errorf("release feed: invalid version %q", r.Version)
	}
	if r.URL == "" {
		return errors.New("release feed: download url is empty")
	}
	return nil
}

// canonical adds the "v" prefix x/mod/semver expects
func canonical(version string) string {
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// IsNewer reports whether candidate is a higher semantic version than current
func IsNewer(candidate, current string) bool {
	c, cur := canonical(candidate), canonical(current)
	if !semver.IsValid(c) {
		return false
	}
	if !semver.IsValid(cur) {
		return true
	}
	return semver.Compare(c, cur) > 0
}

func fetchRelease(ctx context.Context, client *http.Client, feedURL string) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release feed: %w", err)
	}
	if err := release.validate(); err != nil {
		return nil, err
	}
	return &release, nil
}
