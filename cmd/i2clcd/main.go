package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tstpierre-tc/i2clcd"
	"github.com/tstpierre-tc/i2clcd/internal/lcdsim"
)

var (
	app = kingpin.New("i2clcd", "Drive an HD44780 character LCD through a PCF8574 I²C backpack.")

	configFile = app.Flag("config", "YAML configuration file.").Short('c').ExistingFile()
	busName    = app.Flag("bus", "I²C bus name, defaults to the first bus found.").String()
	address    = app.Flag("addr", "Device address, e.g. 0x27.").String()
	cols       = app.Flag("cols", "Display columns.").Uint8()
	lines      = app.Flag("lines", "Display lines (1-4).").Uint8()
	font       = app.Flag("font", "Character font.").Enum("5x8", "5x10")
	backlight  = app.Flag("backlight", "Backlight state.").Enum("on", "off")
	simulate   = app.Flag("simulate", "Print to a simulated display instead of the bus.").Bool()
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	trace      = app.Flag("trace", "Log every byte written to the bus.").Bool()

	writeCmd  = app.Command("write", "Initialize the display and write one line per argument.")
	writeText = writeCmd.Arg("text", "Lines of text, starting at the first row.").Strings()

	clearCmd = app.Command("clear", "Initialize and clear the display.")

	backlightCmd   = app.Command("backlight", "Initialize the display and switch the backlight.")
	backlightState = backlightCmd.Arg("state", "on or off.").Required().Enum("on", "off")

	versionCmd = app.Command("version", "Prints the version")
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	switch {
	case *trace:
		log.SetLevel(log.TraceLevel)
	case *debug:
		log.SetLevel(log.DebugLevel)
	}

	if cmd == versionCmd.FullCommand() {
		showVersion()
		return
	}

	conf, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	if err := execute(cmd, conf, *simulate, os.Stdout); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// execute runs cmd against the configured bus, or against a simulated display
// that is drawn to out afterwards. The bus is closed before it returns.
func execute(cmd string, conf *Config, simulated bool, out io.Writer) error {
	if simulated {
		sim := lcdsim.New(conf.Address, int(conf.Columns), int(conf.Lines))
		if err := run(cmd, sim, conf); err != nil {
			return err
		}
		if err := sim.Render(out); err != nil {
			return fmt.Errorf("unable to draw simulated display: %w", err)
		}
		return nil
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("unable to initialize periph: %w", err)
	}
	b, err := i2creg.Open(conf.Bus)
	if err != nil {
		return fmt.Errorf("unable to open I²C bus %q: %w", conf.Bus, err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.WithError(err).Warn("Unable to close I²C bus")
		}
	}()
	return run(cmd, b, conf)
}

// loadConfig reads the configuration file and applies the flags on top.
func loadConfig() (*Config, error) {
	conf, err := readConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *busName != "" {
		conf.Bus = *busName
	}
	if *address != "" {
		a, err := strconv.ParseUint(*address, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", *address, err)
		}
		conf.Address = uint16(a)
	}
	if *cols != 0 {
		conf.Columns = *cols
	}
	if *lines != 0 {
		conf.Lines = *lines
	}
	if *font != "" {
		conf.Font = *font
	}
	if *backlight != "" {
		conf.Backlight = *backlight == "on"
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"bus":     conf.Bus,
		"address": fmt.Sprintf("0x%02x", conf.Address),
		"size":    fmt.Sprintf("%dx%d", conf.Columns, conf.Lines),
	}).Debug("Loaded configuration")
	return conf, nil
}

func run(cmd string, bus i2c.Bus, conf *Config) error {
	opts, err := conf.Opts()
	if err != nil {
		return err
	}
	dev, err := i2clcd.NewI2C(bus, opts)
	if err != nil {
		return err
	}
	if err := dev.Init(); err != nil {
		return err
	}

	switch cmd {
	case writeCmd.FullCommand():
		if err := dev.SetBacklight(conf.Backlight); err != nil {
			return err
		}
		return writeLines(dev, *writeText)
	case clearCmd.FullCommand():
		return dev.SetBacklight(conf.Backlight)
	case backlightCmd.FullCommand():
		return dev.SetBacklight(*backlightState == "on")
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// writeLines puts one string on each row. Rows beyond the display are dropped.
func writeLines(dev *i2clcd.Dev, text []string) error {
	if len(text) > dev.Lines() {
		log.Warnf("Display has %d lines, dropping %d", dev.Lines(), len(text)-dev.Lines())
		text = text[:dev.Lines()]
	}
	for row, line := range text {
		if err := dev.SetCursor(0, row); err != nil {
			return err
		}
		if err := dev.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}
