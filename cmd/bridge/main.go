// Package main is the entry point for the NUT UDP bridge: it polls a NUT
// server for UPS state and emits one flat JSON datagram per cycle to a
// monitoring receiver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutbridge/nut-udp-bridge/internal/bridge"
	"github.com/nutbridge/nut-udp-bridge/internal/config"
	"github.com/nutbridge/nut-udp-bridge/internal/logging"
	"github.com/nutbridge/nut-udp-bridge/internal/nut"
	"github.com/nutbridge/nut-udp-bridge/internal/record"
	"github.com/nutbridge/nut-udp-bridge/internal/status"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, created, err := config.LoadOrCreate(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.ApplyEnvOverrides(cfg)
	config.Normalize(cfg)

	log := logging.New(cfg.Log)
	if created {
		log.Info().Str("path", *configPath).Msg("no config file found, wrote defaults")
	} else {
		log.Info().Str("path", *configPath).Msg("config loaded")
	}

	var source nut.Source
	if cfg.NUT.SampleFile != "" {
		source = nut.NewFileSource(cfg.NUT.SampleFile, log)
	} else {
		source = nut.NewUpscSource(cfg.NUT.Target, time.Duration(cfg.NUT.TimeoutSec)*time.Second, log)
	}

	sender, err := bridge.NewUDPSender(cfg.Receiver.Host, cfg.Receiver.Port, log)
	if err != nil {
		return fmt.Errorf("open outbound socket: %w", err)
	}

	builder := record.NewBuilder(cfg.Hostname())
	debounce := status.NewDebouncer(cfg.Debounce.ReplaceBatteryCycles, cfg.Debounce.IgnoreDuringSelfTest)

	b := bridge.New(
		bridge.Config{OnlineInterval: time.Duration(cfg.Poll.OnlineIntervalSec) * time.Second},
		source, sender, builder, debounce, log,
	)

	// Last-resort fallback: if no signal ever fires and the loop exits on
	// its own (or run unwinds with an error), the guard still sends the one
	// dead record before the process leaves.
	defer b.Guard().Shutdown()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go func() {
		sig := <-stop
		log.Info().Str("signal", sig.String()).Msg("signal received, shutting down")
		b.Stop()
	}()

	log.Info().
		Str("receiver", fmt.Sprintf("%s:%d", cfg.Receiver.Host, cfg.Receiver.Port)).
		Str("nut_target", cfg.NUT.Target).
		Str("host", cfg.Hostname()).
		Bool("sample_mode", cfg.NUT.SampleFile != "").
		Msg("starting NUT UDP bridge")

	b.Run(context.Background())
	return nil
}
