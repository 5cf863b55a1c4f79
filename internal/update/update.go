// Package update checks GitHub for a newer lark release.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the latest-release endpoint for this CLI.
	DefaultReleasesURL = "https://api.github.com/repos/larkkit/lark-cli/releases/latest"
	CheckTimeout       = 5 * time.Second
	// CheckInterval is how long a result is reused before GitHub is asked again.
	CheckInterval = 24 * time.Hour
)

// Release is the subset of the GitHub release payload we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckResult describes the outcome of a version check.
type CheckResult struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	UpdateURL       string    `json:"update_url"`
	UpdateAvailable bool      `json:"update_available"`
	CheckedAt       time.Time `json:"checked_at"`
}

// Checker queries the releases endpoint, optionally remembering the last
// answer in StatePath so repeated runs stay off the network.
type Checker struct {
	URL       string
	HTTP      *http.Client
	StatePath string
	Now       func() time.Time
}

// NewChecker returns a Checker for DefaultReleasesURL caching into
// stateDir/update.json. An empty stateDir disables caching.
func NewChecker(stateDir string) *Checker {
	c := &Checker{
		URL:  DefaultReleasesURL,
		HTTP: http.DefaultClient,
		Now:  time.Now,
	}
	if stateDir != "" {
		c.StatePath = filepath.Join(stateDir, "update.json")
	}
	return c
}

// Check reports whether a release newer than currentVersion exists.
// It returns nil whenever the answer is unknown; a failed check never
// blocks the CLI.
func (c *Checker) Check(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}
	now := c.Now()

	if cached := c.loadState(); cached != nil && now.Sub(cached.CheckedAt) < CheckInterval {
		return compare(currentVersion, cached.LatestVersion, cached.UpdateURL, cached.CheckedAt)
	}

	release := c.fetch(ctx)
	if release == nil {
		return nil
	}
	result := compare(currentVersion, release.TagName, release.HTMLURL, now)
	c.saveState(result)
	return result
}

func (c *Checker) fetch(ctx context.Context) *Release {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil || release.TagName == "" {
		return nil
	}
	return &release
}

func compare(currentVersion, latestTag, url string, checkedAt time.Time) *CheckResult {
	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(latestTag, "v"),
		UpdateURL:      url,
		CheckedAt:      checkedAt,
	}
	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(latestTag)
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func (c *Checker) loadState() *CheckResult {
	if c.StatePath == "" {
		return nil
	}
	data, err := os.ReadFile(c.StatePath)
	if err != nil {
		return nil
	}
	var cached CheckResult
	if err := json.Unmarshal(data, &cached); err != nil || cached.LatestVersion == "" {
		return nil
	}
	return &cached
}

func (c *Checker) saveState(result *CheckResult) {
	if c.StatePath == "" {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.StatePath), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(c.StatePath, data, 0o600)
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
