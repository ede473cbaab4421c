package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"math"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigPath string = "config.json"

	ModelSmall  string = "yolov8n.onnx"
	ModelMedium string = "yolov8s.onnx"
	ModelLarge  string = "yolov8m.onnx"

	MinFPS = 1
	MaxFPS = 60
)

// Models lists the identifiers offered by the configuration panel.
var Models = [...]string{
	ModelSmall,
	ModelMedium,
	ModelLarge,
}

type Config struct {
	Model               string  `json:"model" mapstructure:"model"`
	ConfidenceThreshold float64 `json:"confidence_threshold" mapstructure:"confidence_threshold"`
	FPS                 int     `json:"fps" mapstructure:"fps"`
	BoxColor            string  `json:"box_color" mapstructure:"box_color"`
}

func Default() Config {
	return Config{
		Model:               ModelSmall,
		ConfidenceThreshold: 0.5,
		FPS:                 30,
		BoxColor:            "#00FF00",
	}
}

func (c Config) Validate() error {
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %v out of range [0,1]", c.ConfidenceThreshold)
	}
	if c.FPS < MinFPS || c.FPS > MaxFPS {
		return fmt.Errorf("fps %d out of range [%d,%d]", c.FPS, MinFPS, MaxFPS)
	}
	if _, err := ParseHexColor(c.BoxColor); err != nil {
		return fmt.Errorf("box_color: %w", err)
	}
	return nil
}

// Interval is the delay between two capture cycles, 1000/fps milliseconds.
func (c Config) Interval() time.Duration {
	fps := c.FPS
	if fps < MinFPS {
		fps = MinFPS
	}
	return time.Duration(1000/fps) * time.Millisecond
}

// Color returns the parsed box color, falling back to the default green.
func (c Config) Color() color.RGBA {
	col, err := ParseHexColor(c.BoxColor)
	if err != nil {
		col, _ = ParseHexColor(Default().BoxColor)
	}
	return col
}

// ParseHexColor parses "#RRGGBB". Channels are always in RGB order.
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want #RRGGBB", s)
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}

// Store persists a Config as a JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the defaults when the file does not exist. A file that is
// present but unreadable, unparsable or out of range is an error.
func (s *Store) Load() (Config, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	if err := checkTypes(v); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", s.path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", s.path, err)
	}

	return cfg, nil
}

// Save rewrites the whole file.
func (s *Store) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("model", cfg.Model)
	v.Set("confidence_threshold", cfg.ConfidenceThreshold)
	v.Set("fps", cfg.FPS)
	v.Set("box_color", cfg.BoxColor)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("model", def.Model)
	v.SetDefault("confidence_threshold", def.ConfidenceThreshold)
	v.SetDefault("fps", def.FPS)
	v.SetDefault("box_color", def.BoxColor)
}

// checkTypes rejects values that Unmarshal would otherwise coerce, such as
// "30" or 12.7 for fps.
func checkTypes(v *viper.Viper) error {
	for _, key := range []string{"model", "box_color"} {
		if _, ok := v.Get(key).(string); !ok {
			return fmt.Errorf("%s must be a string, got %T", key, v.Get(key))
		}
	}

	switch th := v.Get("confidence_threshold").(type) {
	case float64, int:
	default:
		return fmt.Errorf("confidence_threshold must be a number, got %T", th)
	}

	switch fps := v.Get("fps").(type) {
	case int:
	case float64:
		if fps != math.Trunc(fps) {
			return fmt.Errorf("fps must be a whole number, got %v", fps)
		}
	default:
		return fmt.Errorf("fps must be a whole number, got %T", fps)
	}

	return nil
}

// State is the current configuration shared by the capture loop and the UI.
type State struct {
	mu  sync.RWMutex
	cfg Config
}

func NewState(cfg Config) *State {
	return &State{cfg: cfg}
}

func (s *State) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *State) Set(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
