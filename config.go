package glyphwave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Defaults for a mount.
const (
	DefaultPixelSize = 12.0
	DefaultSpeed     = 1.0
	DefaultDPRCap    = 2.0
)

// Bounds on render parameters. Updates outside them are clamped.
const (
	MinPixelSize  = 1.0
	MaxPixelSize  = 256.0
	MaxSpeed      = 16.0
	MaxCanvasEdge = 8192 // device pixels per side
)

// WorkerMode selects whether the hero may render on a worker goroutine.
type WorkerMode string

const (
	WorkerAuto WorkerMode = "auto" // use a worker only where the platform offers one
	WorkerOn   WorkerMode = "on"   // opt into the software worker on EbitenPlatform
	WorkerOff  WorkerMode = "off"  // always render on the main thread
)

// Config is the hero's file configuration.
type Config struct {
	PixelSize   float64       `yaml:"pixel_size"`
	Speed       float64       `yaml:"speed"`
	DPRCap      float64       `yaml:"dpr_cap"`
	FrameRate   int           `yaml:"frame_rate"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Worker      WorkerMode    `yaml:"worker"`
	LogLevel    string        `yaml:"log_level"`
	Debug       bool          `yaml:"debug"`
	Listen      string        `yaml:"listen"` // address for the websocket bridge and metrics, empty disables
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		PixelSize:   DefaultPixelSize,
		Speed:       DefaultSpeed,
		DPRCap:      DefaultDPRCap,
		FrameRate:   DefaultFrameRate,
		IdleTimeout: DefaultIdleTimeout,
		Worker:      WorkerAuto,
		LogLevel:    "info",
	}
}

// ParseConfig decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("glyphwave: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("glyphwave: read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case !(c.PixelSize >= MinPixelSize && c.PixelSize <= MaxPixelSize):
		return fmt.Errorf("glyphwave: pixel_size %v: must be in %v..%v", c.PixelSize, MinPixelSize, MaxPixelSize)
	case !(c.Speed > 0 && c.Speed <= MaxSpeed):
		return fmt.Errorf("glyphwave: speed %v: must be in (0, %v]", c.Speed, MaxSpeed)
	case c.DPRCap < 1:
		return fmt.Errorf("glyphwave: dpr_cap %v: must be at least 1", c.DPRCap)
	case c.FrameRate < 1 || c.FrameRate > 240:
		return fmt.Errorf("glyphwave: frame_rate %d: must be in 1..240", c.FrameRate)
	case c.IdleTimeout < 0:
		return fmt.Errorf("glyphwave: idle_timeout %v: must not be negative", c.IdleTimeout)
	case c.Worker != WorkerAuto && c.Worker != WorkerOn && c.Worker != WorkerOff:
		return fmt.Errorf("glyphwave: worker %q: must be %q, %q or %q", c.Worker, WorkerAuto, WorkerOn, WorkerOff)
	}
	return nil
}

// CanvasSize converts a logical size to device pixels with the device pixel
// ratio capped at DPRCap.
func (c Config) CanvasSize(w, h int, dpr float64) (int, int) {
	ratio := math.Min(math.Max(dpr, 1), c.DPRCap)
	return max(1, int(math.Round(float64(w)*ratio))), max(1, int(math.Round(float64(h)*ratio)))
}

// Options builds mount options for a canvas of the given device-pixel size.
func (c Config) Options(w, h int) Options {
	return Options{
		PixelSize:   c.PixelSize,
		Speed:       c.Speed,
		Width:       w,
		Height:      h,
		Worker:      c.Worker,
		FrameRate:   c.FrameRate,
		IdleTimeout: c.IdleTimeout,
		Debug:       c.Debug,
	}
}

// UpdateFrom returns the update message that moves a running hero from old
// to c, and false when no render field changed.
func (c Config) UpdateFrom(old Config) (Message, bool) {
	var opts []UpdateOption
	if c.PixelSize != old.PixelSize {
		opts = append(opts, WithPixelSize(c.PixelSize))
	}
	if c.Speed != old.Speed {
		opts = append(opts, WithSpeed(c.Speed))
	}
	if len(opts) == 0 {
		return Message{}, false
	}
	return UpdateMessage(opts...), true
}

// configDebounce collapses the burst of events an editor save produces.
const configDebounce = 100 * time.Millisecond

// WatchConfig reloads path whenever it changes and calls fn with each valid
// configuration. Invalid files are logged and skipped. It blocks until ctx
// is done. The directory is watched so editors that replace the file by
// rename are handled.
func WatchConfig(ctx context.Context, path string, fn func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("glyphwave: config watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("glyphwave: config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("glyphwave: config watcher: %w", err)
	}

	log := Logger().With(zap.String("config", abs))
	debounce := time.NewTimer(configDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(configDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher", zap.Error(err))
		case <-debounce.C:
			cfg, err := LoadConfig(abs)
			if err != nil {
				log.Warn("config reload rejected", zap.Error(err))
				continue
			}
			log.Info("config reloaded")
			fn(cfg)
		}
	}
}
