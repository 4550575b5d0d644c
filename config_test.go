package glyphwave

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigOverrides(t *testing.T) {
	cfg, err := ParseConfig([]byte("pixel_size: 16\nspeed: 0.5\nidle_timeout: 500ms\nworker: off\nlisten: \":9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 16.0, cfg.PixelSize)
	assert.Equal(t, 0.5, cfg.Speed)
	assert.Equal(t, 500*time.Millisecond, cfg.IdleTimeout)
	assert.Equal(t, WorkerOff, cfg.Worker)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, DefaultFrameRate, cfg.FrameRate, "unset keys keep defaults")
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "colour: red\n"},
		{"pixel size", "pixel_size: 0.5\n"},
		{"negative speed", "speed: -1\n"},
		{"zero speed", "speed: 0\n"},
		{"fast speed", "speed: 100\n"},
		{"huge pixel size", "pixel_size: 4096\n"},
		{"dpr cap", "dpr_cap: 0\n"},
		{"frame rate", "frame_rate: 1000\n"},
		{"worker", "worker: sometimes\n"},
		{"syntax", "pixel_size: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseConfigWorkerOn(t *testing.T) {
	cfg, err := ParseConfig([]byte("worker: on\n"))
	require.NoError(t, err)
	assert.Equal(t, WorkerOn, cfg.Worker)
	assert.Equal(t, WorkerOn, cfg.Options(10, 10).Worker)
}

func TestCanvasSizeCapsDPR(t *testing.T) {
	cfg := DefaultConfig()
	w, h := cfg.CanvasSize(800, 600, 3)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)

	w, h = cfg.CanvasSize(800, 600, 0.5)
	assert.Equal(t, 800, w, "ratio below 1 is raised to 1")
	assert.Equal(t, 600, h)
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	opts := cfg.Options(320, 200)
	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, 200, opts.Height)
	assert.Equal(t, cfg.PixelSize, opts.PixelSize)
	assert.True(t, opts.Debug)
}

func TestUpdateFrom(t *testing.T) {
	old := DefaultConfig()
	next := old
	next.LogLevel = "debug"
	_, ok := next.UpdateFrom(old)
	assert.False(t, ok, "non-render change")

	next.Speed = 3
	m, ok := next.UpdateFrom(old)
	require.True(t, ok)
	assert.Equal(t, MsgUpdate, m.Type)
	require.NotNil(t, m.Speed)
	assert.Equal(t, 3.0, *m.Speed)
	assert.Nil(t, m.PixelSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("speed: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(c Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Rewrite until the watcher, which starts asynchronously, sees a change.
	deadline := time.After(5 * time.Second)
	write := time.NewTicker(200 * time.Millisecond)
	defer write.Stop()
	for {
		select {
		case c := <-got:
			if c.Speed != 2.5 {
				continue // caught the file mid-rewrite
			}
			cancel()
			assert.NoError(t, <-done)
			return
		case <-write.C:
			require.NoError(t, os.WriteFile(path, []byte("speed: 2.5\n"), 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
