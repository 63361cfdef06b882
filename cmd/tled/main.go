// Tled is the tle2json daemon.
//
// It loads configuration, keeps a parsed element set catalog fresh in memory,
// and serves the parser and catalog over HTTP with a WebSocket event stream.
// Shutdown is handled gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/large-farva/tle2json/internal/app"
	"github.com/large-farva/tle2json/internal/config"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "/etc/tled/tled.toml", "Path to config TOML")
		bind        = pflag.String("bind", "", "HTTP bind address (overrides server.bind)")
		printConfig = pflag.Bool("print-config", false, "Print the effective configuration as TOML and exit")
		version     = pflag.BoolP("version", "v", false, "Print version and exit")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("tled %s (%s, built %s)\n", app.Version, app.GoVersion, app.BuiltAt)
		return
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) && !pflag.CommandLine.Changed("config") {
		// No config at the default path: run on defaults.
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *printConfig {
		b, err := config.Encode(cfg)
		if err != nil {
			log.Fatalf("config encode failed: %v", err)
		}
		_, _ = os.Stdout.Write(b)
		return
	}

	logger := log.New(os.Stdout, "tled ", log.LstdFlags|log.Lmicroseconds)

	a := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		ConfigPath: *configPath,
		Bind:       *bind,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("tled failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
