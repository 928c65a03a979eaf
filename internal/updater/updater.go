// internal/updater/updater.go
package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"drawer-service/internal/events"
	"drawer-service/internal/metrics"
)

const eventSource = "updater"

var (
	// ErrBusy is returned when a check or download is already running
	ErrBusy = errors.New("update operation already in progress")
	// ErrNoUpdate is returned when downloading without an available release
	ErrNoUpdate = errors.New("no update available")
	// ErrNotDownloaded is returned when installing before a download completed
	ErrNotDownloaded = errors.New("update not downloaded")
	// ErrChecksumMismatch is returned when the downloaded file does not match the feed
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Options configures an Updater
type Options struct {
	FeedURL        string
	CurrentVersion string
	DownloadDir    string
	HTTPClient     *http.Client

	// ExecutablePath is replaced on install; empty uses os.Executable
	ExecutablePath string
	// Restart is invoked after the executable has been replaced
	Restart func() error
}

// Status is a snapshot of the updater
type Status struct {
	Checking         bool       `json:"checking"`
	Downloading      bool       `json:"downloading"`
	Installing       bool       `json:"installing"`
	CurrentVersion   string     `json:"current_version"`
	AvailableVersion string     `json:"available_version,omitempty"`
	Downloaded       bool       `json:"downloaded"`
	LastChecked      *time.Time `json:"last_checked,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
}

// Updater checks a release feed, downloads and installs new builds. It shares
// no state with the drawer core.
type Updater struct {
	opts      Options
	client    *http.Client
	publisher events.Publisher
	logger    *zap.Logger

	mu          sync.Mutex
	checking    bool
	downloading bool
	installing  bool
	available   *Release
	downloaded  string
	lastChecked time.Time
	lastError   string

	subMu       sync.Mutex
	subscribers map[chan events.Event]struct{}
}

// New creates an updater
func New(opts Options, publisher events.Publisher, logger *zap.Logger) *Updater {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	if publisher == nil {
		publisher = events.Discard
	}
	return &Updater{
		opts:        opts,
		client:      client,
		publisher:   publisher,
		logger:      logger.With(zap.String("component", "updater")),
		subscribers: make(map[chan events.Event]struct{}),
	}
}

// CurrentVersion returns the running version
func (u *Updater) CurrentVersion() string {
	return u.opts.CurrentVersion
}

// Status returns the current updater state
func (u *Updater) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()

	st := Status{
		Checking:       u.checking,
		Downloading:    u.downloading,
		Installing:     u.installing,
		CurrentVersion: u.opts.CurrentVersion,
		Downloaded:     u.downloaded != "",
		LastError:      u.lastError,
	}
	if u.available != nil {
		st.AvailableVersion = u.available.Version
	}
	if !u.lastChecked.IsZero() {
		t := u.lastChecked
		st.LastChecked = &t
	}
	return st
}

// Subscribe returns a stream of updater events and a function that ends it
func (u *Updater) Subscribe() (<-chan events.Event, func()) {
	ch := make(chan events.Event, 32)

	u.subMu.Lock()
	u.subscribers[ch] = struct{}{}
	u.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			u.subMu.Lock()
			delete(u.subscribers, ch)
			u.subMu.Unlock()
			close(ch)
		})
	}
}

func (u *Updater) emit(eventType string, data map[string]interface{}) {
	event := events.New(eventType, eventSource, data)
	u.publisher.Publish(event)

	u.subMu.Lock()
	defer u.subMu.Unlock()
	for ch := range u.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// busy reports whether a check, download or install is running. Callers hold u.mu.
func (u *Updater) busy() bool {
	return u.checking || u.downloading || u.installing
}

func (u *Updater) fail(err error) error {
	u.mu.Lock()
	u.lastError = err.Error()
	u.mu.Unlock()

	u.logger.Warn("Update operation failed", zap.Error(err))
	u.emit(events.UpdateError, map[string]interface{}{"error": err.Error()})
	return err
}

// CheckForUpdates queries the release feed. It reports the release and
// whether it is newer than the running version.
func (u *Updater) CheckForUpdates(ctx context.Context) (*Release, bool, error) {
	u.mu.Lock()
	if u.busy() {
		u.mu.Unlock()
		return nil, false, ErrBusy
	}
	u.checking = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.checking = false
		u.lastChecked = time.Now()
		u.mu.Unlock()
	}()

	u.emit(events.UpdateChecking, nil)

	release, err := fetchRelease(ctx, u.client, u.opts.FeedURL)
	if err != nil {
		metrics.UpdateChecks.WithLabelValues("error").Inc()
		return nil, false, u.fail(err)
	}

	if !IsNewer(release.Version, u.opts.CurrentVersion) {
		metrics.UpdateChecks.WithLabelValues("not_available").Inc()
		u.mu.Lock()
		u.available = nil
		u.lastError = ""
		u.mu.Unlock()

		u.emit(events.UpdateNotAvailable, map[string]interface{}{
			"current_version": u.opts.CurrentVersion,
			"latest_version":  release.Version,
		})
		return release, false, nil
	}

	metrics.UpdateChecks.WithLabelValues("available").Inc()
	u.mu.Lock()
	if u.available == nil || u.available.Version != release.Version {
		u.downloaded = ""
	}
	u.available = release
	u.lastError = ""
	u.mu.Unlock()

	u.logger.Info("Update available",
		zap.String("current_version", u.opts.CurrentVersion),
		zap.String("version", release.Version),
	)
	u.emit(events.UpdateAvailable, map[string]interface{}{
		"version":     release.Version,
		"notes":       release.Notes,
		"released_at": release.ReleasedAt,
	})
	return release, true, nil
}

// DownloadUpdate fetches the available release into the download directory
// and returns the path of the verified file.
func (u *Updater) DownloadUpdate(ctx context.Context) (string, error) {
	u.mu.Lock()
	if u.busy() {
		u.mu.Unlock()
		return "", ErrBusy
	}
	if u.available == nil {
		u.mu.Unlock()
		return "", ErrNoUpdate
	}
	release := *u.available
	u.downloading = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.downloading = false
		u.mu.Unlock()
	}()

	path, err := u.download(ctx, &release)
	if err != nil {
		return "", u.fail(err)
	}

	u.mu.Lock()
	u.downloaded = path
	u.lastError = ""
	u.mu.Unlock()

	u.logger.Info("Update downloaded",
		zap.String("version", release.Version),
		zap.String("path", path),
	)
	u.emit(events.UpdateDownloaded, map[string]interface{}{
		"version": release.Version,
		"path":    path,
	})
	return path, nil
}

func (u *Updater) download(ctx context.Context, release *Release) (string, error) {
	if err := os.MkdirAll(u.opts.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, release.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update download returned status %d", resp.StatusCode)
	}

	final := filepath.Join(u.opts.DownloadDir, "drawer-service-"+strings.TrimPrefix(canonical(release.Version), "v"))
	tmp, err := os.CreateTemp(u.opts.DownloadDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	progress := &progressWriter{total: resp.ContentLength, emit: u.emitProgress}
	_, copyErr := io.Copy(io.MultiWriter(tmp, hash, progress), resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to write update: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to write update: %w", closeErr)
	}
	progress.finish()

	if release.SHA256 != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(got, strings.TrimSpace(release.SHA256)) {
			return "", fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, release.SHA256, got)
		}
	}

	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return "", fmt.Errorf("failed to mark update executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("failed to move update into place: %w", err)
	}
	return final, nil
}

func (u *Updater) emitProgress(transferred, total int64, percent float64) {
	u.emit(events.UpdateProgress, map[string]interface{}{
		"transferred": transferred,
		"total":       total,
		"percent":     percent,
	})
}

// InstallAndRestart swaps the running executable for the downloaded one and
// invokes the restart hook. The previous executable is kept with a .bak suffix.
func (u *Updater) InstallAndRestart() error {
	u.mu.Lock()
	if u.busy() {
		u.mu.Unlock()
		return ErrBusy
	}
	path := u.downloaded
	if path == "" {
		u.mu.Unlock()
		return ErrNotDownloaded
	}
	var version string
	if u.available != nil {
		version = u.available.Version
	}
	u.installing = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.installing = false
		u.mu.Unlock()
	}()

	target := u.opts.ExecutablePath
	if target == "" {
		exe, err := os.Executable()
		if err != nil {
			return u.fail(fmt.Errorf("failed to locate executable: %w", err))
		}
		target = exe
	}

	if err := swapExecutable(target, path); err != nil {
		return u.fail(err)
	}

	u.mu.Lock()
	u.downloaded = ""
	u.mu.Unlock()

	u.logger.Info("Update installed",
		zap.String("from_version", u.opts.CurrentVersion),
		zap.String("to_version", version),
		zap.String("executable", target),
	)

	if u.opts.Restart == nil {
		return nil
	}
	if err := u.opts.Restart(); err != nil {
		return u.fail(fmt.Errorf("restart failed: %w", err))
	}
	return nil
}

func swapExecutable(target, replacement string) error {
	backup := target + ".bak"
	_ = os.Remove(backup)

	if err := os.Rename(target, backup); err != nil {
		return fmt.Errorf("failed to back up executable: %w", err)
	}
	if err := os.Rename(replacement, target); err != nil {
		if restoreErr := os.Rename(backup, target); restoreErr != nil {
			return fmt.Errorf("failed to install update: %w (restore failed: %v)", err, restoreErr)
		}
		return fmt.Errorf("failed to install update: %w", err)
	}
	return nil
}

// Run checks the feed every interval until ctx is done. With autoDownload an
// available release is downloaded right away.
func (u *Updater) Run(ctx context.Context, interval time.Duration, autoDownload bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, available, err := u.CheckForUpdates(ctx)
			if err != nil || !available || !autoDownload {
				continue
			}
			if _, err := u.DownloadUpdate(ctx); err != nil && !errors.Is(err, ErrBusy) {
				u.logger.Warn("Automatic update download failed", zap.Error(err))
			}
		}
	}
}

// progressWriter reports download progress whenever the whole percentage
// changes, or every MiB when the size is unknown.
type progressWriter struct {
	total       int64
	transferred int64
	lastPercent int
	lastReport  int64
	emit        func(transferred, total int64, percent float64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.transferred += int64(len(b))

	if p.total > 0 {
		percent := int(p.transferred * 100 / p.total)
		if percent > p.lastPercent {
			p.lastPercent = percent
			p.emit(p.transferred, p.total, float64(p.transferred)*100/float64(p.total))
		}
	} else if p.transferred-p.lastReport >= 1<<20 {
		p.lastReport = p.transferred
		p.emit(p.transferred, p.total, -1)
	}
	return len(b), nil
}

func (p *progressWriter) finish() {
	if p.total <= 0 {
		p.emit(p.transferred, p.transferred, 100)
	}
}
