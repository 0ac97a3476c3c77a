// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mcp4725 sets and reads back the output of an MCP4725 D/A converter.
package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/dac/internal/config"
	"github.com/GermanBionicSystems/dac/mcp4725"
)

func main() {
	app := cli.NewApp()
	app.Name = "mcp4725"
	app.Usage = "control an MCP4725 12-bit D/A converter"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load device settings from YAML `FILE`",
		},
		cli.StringFlag{
			Name:  "bus, b",
			Usage: "I²C bus `NAME`, overrides the config file",
		},
		cli.IntFlag{
			Name:  "address, a",
			Usage: "value of the A2:A1:A0 address `PINS` (0-7), overrides the config file",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log every bus operation",
		},
	}
	app.Before = func(c *cli.Context) error {
		log.SetFormatter(&log.TextFormatter{DisableColors: true})
		if c.Bool("debug") {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}

	pdFlag := cli.StringFlag{
		Name:  "pd",
		Value: "normal",
		Usage: "power down `MODE`: normal, 1k, 100k or 500k",
	}
	app.Commands = []cli.Command{
		{
			Name:      "set",
			Usage:     "write the DAC register",
			ArgsUsage: "VALUE",
			Flags: []cli.Flag{
				pdFlag,
				cli.BoolFlag{Name: "eeprom, e", Usage: "also save the setting in EEPROM"},
				cli.BoolFlag{Name: "wait, w", Usage: "wait for the EEPROM write to complete"},
			},
			Action: withDev(func(c *cli.Context, d *device) error {
				value, err := parseValue(c.Args().First())
				if err != nil {
					return err
				}
				pd, err := parsePDMode(c.String("pd"))
				if err != nil {
					return err
				}
				return d.set(pd, value, c.Bool("eeprom"), c.Bool("wait"))
			}),
		},
		{
			Name:      "voltage",
			Usage:     "set the output voltage",
			ArgsUsage: "VOLTAGE (e.g. 1.25V)",
			Flags:     []cli.Flag{pdFlag},
			Action: withDev(func(c *cli.Context, d *device) error {
				pd, err := parsePDMode(c.String("pd"))
				if err != nil {
					return err
				}
				return d.voltage(pd, c.Args().First())
			}),
		},
		{
			Name:      "fast",
			Usage:     "write the DAC register with a fast mode command",
			ArgsUsage: "VALUE",
			Flags:     []cli.Flag{pdFlag},
			Action: withDev(func(c *cli.Context, d *device) error {
				value, err := parseValue(c.Args().First())
				if err != nil {
					return err
				}
				pd, err := parsePDMode(c.String("pd"))
				if err != nil {
					return err
				}
				return d.fast(pd, value)
			}),
		},
		{
			Name:  "status",
			Usage: "read the DAC register and EEPROM",
			Action: withDev(func(c *cli.Context, d *device) error {
				return d.status(os.Stdout)
			}),
		},
		{
			Name:  "reset",
			Usage: "general call reset, reloads every device from EEPROM",
			Action: withDev(func(c *cli.Context, d *device) error {
				return d.reset()
			}),
		},
		{
			Name:  "wakeup",
			Usage: "general call wake-up, clears the power down bits of every device",
			Action: withDev(func(c *cli.Context, d *device) error {
				return d.wakeUp()
			}),
		},
		{
			Name:  "saw",
			Usage: "output a sawtooth wave",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "step", Value: 16, Usage: "count increment between samples"},
				cli.DurationFlag{Name: "period", Value: time.Second, Usage: "duration of one ramp"},
				cli.IntFlag{Name: "cycles", Value: 0, Usage: "number of ramps, 0 runs forever"},
				cli.BoolFlag{Name: "meter, m", Usage: "draw the output level on the terminal"},
			},
			Action: withDev(func(c *cli.Context, d *device) error {
				opts := sawOpts{
					Step:   c.Int("step"),
					Period: c.Duration("period"),
					Cycles: c.Int("cycles"),
				}
				if c.Bool("meter") {
					opts.Meter = newMeter()
				}
				return d.saw(opts)
			}),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig merges the config file with the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if c.GlobalIsSet("bus") {
		cfg.Bus = c.GlobalString("bus")
	}
	if c.GlobalIsSet("address") {
		a := c.GlobalInt("address")
		if a < 0 || a > 7 {
			return nil, fmt.Errorf("--address %d must be in [0, 7]", a)
		}
		cfg.Address = byte(a)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withDev opens the bus and device described by the configuration before
// running action, and closes the bus afterward.
func withDev(action func(*cli.Context, *device) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return cli.NewExitError(err, 2)
		}
		if _, err = host.Init(); err != nil {
			return err
		}
		bus, err := i2creg.Open(cfg.Bus)
		if err != nil {
			return err
		}
		defer bus.Close()
		d, err := newDevice(bus, cfg)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"bus": bus.String(), "addr": d.dev.Addr()}).Debug("opened device")
		if err = action(c, d); err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	}
}

func newDevice(bus i2c.Bus, cfg *config.Config) (*device, error) {
	dev, err := mcp4725.New(bus, cfg.Address, cfg.VRef())
	if err != nil {
		return nil, err
	}
	return &device{dev: dev, cfg: cfg}, nil
}
