package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"backrooms/app"
	"backrooms/config"
	"backrooms/hal"
	"backrooms/internal/buildinfo"
	"backrooms/internal/logging"
	"backrooms/snapshot"
)

func main() {
	var (
		headless = flag.Bool("headless", false, "Run without a window.")
		hz       = flag.Int("hz", 60, "Tick rate in headless mode.")
		ticks    = flag.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
		seed     = flag.Int64("seed", 0, "World seed (0 = derive from the clock).")
		savePath = flag.String("save", "", "Snapshot file to load on start and save on exit.")
		cfgPath  = flag.String("config", "", "Optional YAML tuning file.")
	)
	flag.Parse()

	log := logging.L()
	log.WithField("build", buildinfo.Long()).Info("starting")

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			log.WithError(err).Fatal("bad config")
		}
		cfg = c
	}

	ac := app.Config{
		Cfg:      cfg,
		Seed:     *seed,
		SavePath: *savePath,
		Mute:     *headless,
	}
	if ac.Seed == 0 {
		ac.Seed = time.Now().UnixNano()
	}

	if *savePath != "" {
		switch s, err := snapshot.Read(*savePath); {
		case err == nil:
			ac.Restore = s
			ac.Seed = s.Seed
		case errors.Is(err, os.ErrNotExist):
			// First run with this save file.
		default:
			log.WithError(err).Fatal("unreadable snapshot")
		}
	}

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, func(h hal.HAL) func() error {
			return app.New(h, ac)
		}, hal.HeadlessConfig{Hz: *hz, Ticks: *ticks})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(func(h hal.HAL) func() error {
		return app.New(h, ac)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
