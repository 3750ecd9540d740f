package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"platform-observer/src/config"
	"platform-observer/src/platform"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	exportOnExit := flag.Bool("export", false, "write JSON export artifacts on shutdown")
	flag.Parse()

	// Load config from YAML file, or run on defaults
	var conf *config.Config
	var err error
	if *configPath != "" {
		conf, err = config.NewConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		conf = config.NewDefaultConfig()
	}

	// Build and start the platform
	p, err := platform.New(conf)
	if err != nil {
		fmt.Printf("Error building platform: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		p.Logger.Critical("Failed to start platform: %v", err)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	p.Logger.Info("Shutting down...")
	if *exportOnExit {
		if _, err := p.ExportAll(); err != nil {
			p.Logger.Warning("Export failed: %v", err)
		}
	}
	p.Stop()
}
