package app

import (
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-fx/internal/config"
	"github.com/coreman2200/arcaluminis-fx/internal/led"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
)

// BuildLocal opens a driver for every configured device. A driver that fails
// to open falls back to the simulator so the rest of the setup keeps running;
// simOnly skips hardware entirely.
func BuildLocal(devs []config.Device, simOnly bool, log zerolog.Logger) (*led.Bank, error) {
	bank := led.NewBank(log)
	for i, d := range devs {
		dev := localDevice(i, d)
		drv := led.WithWhiteCap(openDriver(d, dev.LEDCount, simOnly, log), d.WhiteCap)
		if err := bank.Add(dev, drv); err != nil {
			_ = drv.Close()
			_ = bank.Close()
			return nil, err
		}
	}
	return bank, nil
}

func localDevice(i int, d config.Device) *topology.Device {
	if d.Type == "matrix" {
		return topology.NewPanel(i, d.Name, topology.Layout{
			Width:  d.Width,
			Height: d.Height,
			Order:  topology.Serpentine{XFlipEveryRow: d.Serpentine},
		})
	}
	return topology.NewStrip(i, d.Name, d.LEDs)
}

func openDriver(d config.Device, n int, simOnly bool, log zerolog.Logger) led.Driver {
	if simOnly {
		return led.NewSim(n)
	}
	var (
		drv led.Driver
		err error
	)
	switch d.Driver {
	case "spi":
		drv, err = led.OpenSPI(d.SPI.Dev, physic.Frequency(d.SPI.FreqKHz)*physic.KiloHertz, n)
	case "serial":
		drv, err = led.OpenAdalight(d.Serial.Port, d.Serial.Baud, n)
	case "term":
		drv = led.NewTerminal(n)
	case "sim":
		drv = led.NewSim(n)
	default:
		log.Warn().Str("driver", d.Driver).Str("device", d.Name).Msg("unknown driver; using SIM")
		return led.NewSim(n)
	}
	if err != nil {
		log.Warn().Err(err).Str("driver", d.Driver).Str("device", d.Name).Msg("driver init failed; falling back to SIM")
		return led.NewSim(n)
	}
	return drv
}
