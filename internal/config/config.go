package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/openrgb"
)

var ErrInvalid = errors.New("invalid config")

type HTTP struct {
	Addr string `yaml:"addr"`
}

type OpenRGB struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`        // e.g. 127.0.0.1:6742
	ClientName string `yaml:"client_name"` // shown in the OpenRGB SDK client list
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, or "" for the first bus
	FreqKHz int    `yaml:"freq_khz"` // 0 picks the WS2812 default
}

type Serial struct {
	Port string `yaml:"port"` // e.g. /dev/ttyUSB0
	Baud int    `yaml:"baud"`
}

type Device struct {
	Name       string `yaml:"name"`
	Driver     string `yaml:"driver"` // "sim" | "spi" | "serial" | "term"
	Type       string `yaml:"type"`   // "strip" | "matrix"
	LEDs       int    `yaml:"leds,omitempty"`
	Width      int    `yaml:"width,omitempty"`
	Height     int    `yaml:"height,omitempty"`
	Serpentine bool   `yaml:"serpentine,omitempty"`
	SPI        SPI    `yaml:"spi,omitempty"`
	Serial     Serial `yaml:"serial,omitempty"`

	// WhiteCap limits each LED's R+G+B to this fraction of full white;
	// 0 disables it.
	WhiteCap float64 `yaml:"white_cap,omitempty"`
}

// Count is the number of LEDs the device drives.
func (d Device) Count() int {
	if d.Type == "matrix" {
		return d.Width * d.Height
	}
	return d.LEDs
}

type Preview struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	LogLevel   string `yaml:"log_level"`
	Effect     string `yaml:"effect"`
	Brightness string `yaml:"brightness"`
	Color      string `yaml:"color"`

	HTTP    HTTP     `yaml:"http"`
	OpenRGB OpenRGB  `yaml:"openrgb"`
	Local   []Device `yaml:"local"`
	Preview Preview  `yaml:"preview"`
}

// Default is used when no file exists: one simulated strip and OpenRGB on
// localhost.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Effect:     "Digital rain",
		Brightness: "max",
		HTTP:       HTTP{Addr: ":8080"},
		OpenRGB: OpenRGB{
			Enabled:    true,
			Addr:       fmt.Sprintf("127.0.0.1:%d", openrgb.DefaultPort),
			ClientName: "arcaluminis",
		},
		Local:   []Device{{Name: "sim strip", Driver: "sim", Type: "strip", LEDs: 60}},
		Preview: Preview{Enabled: true},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.Local = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the brightness name, the color and every local device.
func (c *Config) Validate() error {
	var errs []error
	if c.Brightness != "" {
		if _, err := effect.ParseLevel(c.Brightness); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Color != "" {
		if _, err := color.ParseHex(c.Color); err != nil {
			errs = append(errs, err)
		}
	}
	for i, d := range c.Local {
		if err := d.validate(); err != nil {
			errs = append(errs, fmt.Errorf("local[%d] %q: %w", i, d.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (d Device) validate() error {
	switch d.Driver {
	case "sim", "spi", "term":
	case "serial":
		if d.Serial.Port == "" {
			return errors.New("serial driver needs serial.port")
		}
	default:
		return fmt.Errorf("unknown driver %q", d.Driver)
	}
	if d.WhiteCap < 0 || d.WhiteCap > 1 {
		return fmt.Errorf("white_cap must be within [0,1], got %g", d.WhiteCap)
	}
	switch d.Type {
	case "strip", "":
		if d.LEDs <= 0 {
			return fmt.Errorf("strip needs leds > 0, got %d", d.LEDs)
		}
	case "matrix":
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("matrix needs width and height, got %dx%d", d.Width, d.Height)
		}
	default:
		return fmt.Errorf("unknown type %q", d.Type)
	}
	return nil
}
