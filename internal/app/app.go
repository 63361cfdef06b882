// Package app wires together the HTTP server, WebSocket hub, catalog store,
// and refresh runner. It owns the daemon's lifecycle and is the single source
// of truth for the current operating state.
package app

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/large-farva/tle2json/internal/catalog"
	"github.com/large-farva/tle2json/internal/config"
	"github.com/large-farva/tle2json/internal/metrics"
	"github.com/large-farva/tle2json/internal/refresh"
	"github.com/large-farva/tle2json/internal/telemetry"
	"github.com/large-farva/tle2json/internal/tle"
	"github.com/large-farva/tle2json/internal/ws"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *log.Logger
	Cfg        config.Config
	ConfigPath string
	Bind       string
}

// App is the top-level daemon process. It manages the HTTP server, the
// WebSocket event hub, the catalog store, and the refresh runner.
type App struct {
	log        *log.Logger
	cfg        config.Config
	configPath string
	bind       string
	server     *http.Server

	startedAt time.Time
	state     atomic.Value // current state string (BOOTING, IDLE, etc.)

	wsHub   *ws.Hub
	store   *catalog.Store
	runner  *refresh.Runner
	logs    *logRing
	metrics *metrics.Metrics

	parseOK     atomic.Int64
	parseFailed atomic.Int64

	startOnce sync.Once
}

// New creates an App in the BOOTING state. Call Run to start serving.
func New(opts Options) *App {
	a := &App{
		log:        opts.Logger,
		cfg:        opts.Cfg,
		configPath: opts.ConfigPath,
		bind:       opts.Bind,
		startedAt:  time.Now(),
		wsHub:      ws.NewHub(),
		logs:       newLogRing(logRingSize),
		metrics:    metrics.New(),
	}
	a.state.Store("BOOTING")

	a.store = catalog.NewStore(catalog.Options{
		URL:          a.cfg.Catalog.URL,
		DataRoot:     a.cfg.Data.Root,
		RefreshHours: a.cfg.Catalog.RefreshHours,
		MaxBodyBytes: a.cfg.Catalog.MaxBodyBytes,
		Parser:       tle.Parser{Strict: a.cfg.Parser.Strict},
		CrossCheck:   a.cfg.Catalog.CrossCheck,
		FetchRetries: a.cfg.Catalog.FetchRetries,
		Logger:       a.log,
	})
	a.runner = refresh.New(a, a.store, time.Duration(a.cfg.Catalog.RefreshHours)*time.Hour, a.log)
	a.runner.OnLoad = func(sum catalog.Summary, err error) {
		if err != nil {
			a.metrics.ObserveRefreshError()
			return
		}
		a.metrics.ObserveRefresh(sum.Source, sum.Accepted, sum.Rejected)
	}
	return a
}

// Handler returns the daemon's HTTP routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/config/profiles", a.handleConfigProfiles)
	mux.HandleFunc("/api/logs", a.handleLogs)
	mux.HandleFunc("/api/parse", a.handleParse)
	mux.HandleFunc("/api/catalog", a.handleCatalog)
	mux.HandleFunc("/api/catalog/info", a.handleCatalogInfo)
	mux.HandleFunc("/api/catalog/refresh", a.handleCatalogRefresh)
	mux.HandleFunc("/api/catalog/{id}", a.handleCatalogEntry)
	mux.HandleFunc("/api/pause", a.handlePause)
	mux.HandleFunc("/api/resume", a.handleResume)
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/ws", a.wsHub.Handler())
	return a.metrics.Middleware(mux)
}

// start launches the hub, heartbeat, and refresh loops. It is safe to call
// more than once; only the first call has any effect.
func (a *App) start(ctx context.Context) {
	a.startOnce.Do(func() {
		go a.wsHub.Run(ctx)
		go a.heartbeatLoop(ctx)
		go a.runner.Run(ctx, a.transition)
	})
}

// Run starts the HTTP server and background loops. It blocks until the
// context is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" && a.cfg.Server.Bind != "" {
		bind = a.cfg.Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	a.server = &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	a.log.Printf("listening on http://%s", bind)
	a.start(ctx)

	go func() {
		<-ctx.Done()
		a.log.Printf("shutdown requested")
		_ = a.server.Shutdown(context.Background())
	}()

	return a.server.Serve(ln)
}

// transition atomically updates the daemon state and broadcasts the change
// to all connected WebSocket clients.
func (a *App) transition(newState string) {
	old := a.state.Swap(newState).(string)
	if old == newState {
		return
	}
	a.wsHub.BroadcastJSON(telemetry.StateTransition{
		Event: telemetry.NewEvent(telemetry.EventState, "tled"),
		From:  old,
		To:    newState,
	})
}

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event:         telemetry.NewEvent(telemetry.EventHeartbeat, ""),
				State:         a.state.Load().(string),
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
			})
		}
	}
}

// BroadcastJSON forwards an event to the hub. Log events below the
// configured level are dropped; the rest are also kept in the log ring.
func (a *App) BroadcastJSON(v any) {
	if ll, ok := v.(telemetry.LogLine); ok {
		if !levelEnabled(a.cfg.Logging.Level, ll.Level) {
			return
		}
		a.logs.add(logEntry{
			TS:        ll.TS,
			Level:     ll.Level,
			Component: ll.Component,
			Message:   ll.Message,
		})
	}
	a.wsHub.BroadcastJSON(v)
}

// logEvent writes msg to the process log and publishes it as a log event.
func (a *App) logEvent(level, msg string) {
	if levelEnabled(a.cfg.Logging.Level, level) {
		a.log.Printf("%s: %s", level, msg)
	}
	a.BroadcastJSON(telemetry.LogLine{
		Event:   telemetry.NewEvent(telemetry.EventLog, "tled"),
		Level:   level,
		Message: msg,
	})
}
