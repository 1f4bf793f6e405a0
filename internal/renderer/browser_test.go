package renderer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

// fakeEnv records how the finder probed the environment.
type fakeEnv struct {
	system      string
	files       map[string]bool
	failures    int
	downloads   int
	downloadErr error
}

func (e *fakeEnv) finder() browserFinder {
	return browserFinder{
		lookPath: func() (string, bool) {
			return e.system, e.system != ""
		},
		managedPath: func(dir string) string {
			return filepath.Join(dir, "chromium", "chrome")
		},
		download: func(_ context.Context, dir string, _ *slog.Logger) error {
			e.downloads++
			if e.downloads <= e.failures {
				if e.downloadErr != nil {
					return e.downloadErr
				}
				return errors.New("connection reset")
			}
			e.files[filepath.Join(dir, "chromium", "chrome")] = true
			return nil
		},
		exists: func(path string) bool {
			return e.files[path]
		},
		backoff: func(int) time.Duration { return 0 },
	}
}

func TestEnsureBrowser(t *testing.T) {
	t.Parallel()

	managed := filepath.Join("/cache", "chromium", "chrome")

	tests := []struct {
		name          string
		env           *fakeEnv
		opts          BrowserOptions
		wantSource    BrowserSource
		wantErr       error
		wantDownloads int
	}{
		{
			name:       "explicit path wins",
			env:        &fakeEnv{system: "/usr/bin/chromium", files: map[string]bool{"/opt/chrome": true}},
			opts:       BrowserOptions{ExplicitPath: "/opt/chrome", AutoInstall: true},
			wantSource: SourceExplicit,
		},
		{
			name:    "missing explicit path is an error",
			env:     &fakeEnv{system: "/usr/bin/chromium", files: map[string]bool{}},
			opts:    BrowserOptions{ExplicitPath: "/opt/chrome", AutoInstall: true},
			wantErr: ErrChromiumMissing,
		},
		{
			name:       "system browser",
			env:        &fakeEnv{system: "/usr/bin/chromium", files: map[string]bool{}},
			opts:       BrowserOptions{InstallDir: "/cache", AutoInstall: true},
			wantSource: SourceSystem,
		},
		{
			name:       "managed browser",
			env:        &fakeEnv{files: map[string]bool{managed: true}},
			opts:       BrowserOptions{InstallDir: "/cache"},
			wantSource: SourceManaged,
		},
		{
			name:    "no browser and no auto install",
			env:     &fakeEnv{files: map[string]bool{}},
			opts:    BrowserOptions{InstallDir: "/cache"},
			wantErr: ErrChromiumMissing,
		},
		{
			name:          "download after failures",
			env:           &fakeEnv{files: map[string]bool{}, failures: 2},
			opts:          BrowserOptions{InstallDir: "/cache", AutoInstall: true},
			wantSource:    SourceDownloaded,
			wantDownloads: 3,
		},
		{
			name:          "download gives up",
			env:           &fakeEnv{files: map[string]bool{}, failures: 5},
			opts:          BrowserOptions{InstallDir: "/cache", AutoInstall: true, Attempts: 2},
			wantErr:       ErrDownloadFailed,
			wantDownloads: 2,
		},
		{
			name:          "cancelled download is not retried",
			env:           &fakeEnv{files: map[string]bool{}, failures: 5, downloadErr: context.Canceled},
			opts:          BrowserOptions{InstallDir: "/cache", AutoInstall: true},
			wantErr:       context.Canceled,
			wantDownloads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.opts.Logger = quietLogger()
			info, err := tt.env.finder().ensure(context.Background(), tt.opts)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if info.Source != tt.wantSource {
					t.Errorf("got source %q, expected %q", info.Source, tt.wantSource)
				}
			}
			if tt.env.downloads != tt.wantDownloads {
				t.Errorf("got %d downloads, expected %d", tt.env.downloads, tt.wantDownloads)
			}
		})
	}
}

func TestDownloadBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 64 * time.Second},
	}
	for _, tt := range tests {
		if got := downloadBackoff(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: got %v, expected %v", tt.attempt, got, tt.want)
		}
	}
}

func TestManagedDir(t *testing.T) {
	t.Setenv(BrowserDirEnv, "")
	if got := ManagedDir("/cache/slideshot/browser"); got != "/cache/slideshot/browser" {
		t.Errorf("got %q", got)
	}

	t.Setenv(BrowserDirEnv, "/srv/browsers")
	if got := ManagedDir("/cache/slideshot/browser"); got != "/srv/browsers" {
		t.Errorf("got %q, expected env override", got)
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if fileExists(dir) {
		t.Error("directory reported as file")
	}
	if fileExists("") {
		t.Error("empty path reported as file")
	}
	if fileExists(filepath.Join(dir, "nope")) {
		t.Error("missing file reported as existing")
	}
}
