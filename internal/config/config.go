// Package config loads the daemon configuration from a TOML file.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"physical/internal/physics"
)

type Config struct {
	Physics Physics `toml:"physics"`
	Server  Server  `toml:"server"`
	Scene   Scene   `toml:"scene"`
	Log     Log     `toml:"log"`
}

type Physics struct {
	// SphereMode is "exact" or "legacy".
	SphereMode         string   `toml:"sphere_mode"`
	SymmetricPrimitive bool     `toml:"symmetric_primitive"`
	ProbeProposedPose  bool     `toml:"probe_proposed_pose"`
	DefaultDetail      string   `toml:"default_detail"`
	Tick               Duration `toml:"tick"`
}

type Server struct {
	Addr string `toml:"addr"`
	// ReadLimit caps the size of one inbound websocket message in bytes.
	ReadLimit int64 `toml:"read_limit"`
}

type Scene struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
	// MeshCells is the marching cubes resolution along the longest axis of a
	// tessellated solid.
	MeshCells int `toml:"mesh_cells"`
}

type Log struct {
	Level slog.Level `toml:"level"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Physics: Physics{
			SphereMode:    physics.SphereExact.String(),
			DefaultDetail: physics.DetailBound.String(),
			Tick:          Duration{time.Second / 60},
		},
		Server: Server{
			Addr:      "127.0.0.1:8090",
			ReadLimit: 4096,
		},
		Scene: Scene{
			MeshCells: 32,
		},
		Log: Log{Level: slog.LevelInfo},
	}
}

// Load reads path over the defaults. Keys the file sets replace the default;
// unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config")
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.New(strict.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if _, err := c.SphereMode(); err != nil {
		return err
	}
	if _, err := c.DefaultDetail(); err != nil {
		return err
	}
	if c.Physics.Tick.Duration <= 0 {
		return errors.Errorf("physics.tick must be positive, got %s", c.Physics.Tick.Duration)
	}
	if c.Server.ReadLimit <= 0 {
		return errors.Errorf("server.read_limit must be positive, got %d", c.Server.ReadLimit)
	}
	if c.Scene.MeshCells < 4 {
		return errors.Errorf("scene.mesh_cells must be at least 4, got %d", c.Scene.MeshCells)
	}
	return nil
}

// SphereMode parses physics.sphere_mode.
func (c Config) SphereMode() (physics.SphereMode, error) {
	switch c.Physics.SphereMode {
	case "", "exact":
		return physics.SphereExact, nil
	case "legacy":
		return physics.SphereLegacy, nil
	}
	return physics.SphereExact, errors.Errorf("physics.sphere_mode: unknown mode %q", c.Physics.SphereMode)
}

// DefaultDetail parses physics.default_detail.
func (c Config) DefaultDetail() (physics.DetailLevel, error) {
	l, err := physics.ParseDetailLevel(c.Physics.DefaultDetail)
	return l, errors.Wrap(err, "physics.default_detail")
}

// EngineOptions maps the physics section onto engine options. The config must
// have passed Validate.
func (c Config) EngineOptions(log *slog.Logger) []physics.Option {
	mode, _ := c.SphereMode()
	opts := []physics.Option{
		physics.WithSphereMode(mode),
		physics.WithSymmetricPrimitive(c.Physics.SymmetricPrimitive),
		physics.WithProbeProposedPose(c.Physics.ProbeProposedPose),
	}
	if log != nil {
		opts = append(opts, physics.WithLogger(log))
	}
	return opts
}

// NewLogger returns a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Log.Level}))
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
