package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level: debug
effect: Rainbow wave
brightness: medium
color: "#00ff80"
http:
  addr: ":9000"
openrgb:
  enabled: false
local:
  - name: desk
    driver: spi
    type: strip
    leds: 30
    spi:
      dev: /dev/spidev0.0
      freq_khz: 2500
  - name: panel
    driver: sim
    type: matrix
    width: 8
    height: 4
    serpentine: true
    white_cap: 0.6
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "Rainbow wave", c.Effect)
	assert.Equal(t, ":9000", c.HTTP.Addr)
	assert.False(t, c.OpenRGB.Enabled)
	assert.Equal(t, "arcaluminis", c.OpenRGB.ClientName, "defaults survive partial files")
	require.Len(t, c.Local, 2)
	assert.Equal(t, 2500, c.Local[0].SPI.FreqKHz)
	assert.Equal(t, 30, c.Local[0].Count())
	assert.Equal(t, 32, c.Local[1].Count())
	assert.True(t, c.Local[1].Serpentine)
	assert.Equal(t, 0.6, c.Local[1].WhiteCap)
	assert.True(t, c.Preview.Enabled)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Color = "#123456"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cases := map[string]func(c *Config){
		"brightness":   func(c *Config) { c.Brightness = "blinding" },
		"color":        func(c *Config) { c.Color = "#12" },
		"driver":       func(c *Config) { c.Local[0].Driver = "dmx" },
		"type":         func(c *Config) { c.Local[0].Type = "cube" },
		"strip leds":   func(c *Config) { c.Local[0].LEDs = 0 },
		"matrix shape": func(c *Config) { c.Local[0] = Device{Name: "m", Driver: "sim", Type: "matrix", Width: 4} },
		"serial port":  func(c *Config) { c.Local[0].Driver = "serial" },
		"white cap":    func(c *Config) { c.Local[0].WhiteCap = 1.5 },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mut(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}
