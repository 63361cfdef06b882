// Package refresh drives the periodic catalog reload loop of tled. It loads
// the catalog at startup, reloads it every refresh interval, and accepts
// commands (refresh, pause, resume) from the HTTP layer between reloads.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/large-farva/tle2json/internal/catalog"
	"github.com/large-farva/tle2json/internal/telemetry"
)

// Daemon states reported through setState.
const (
	StateIdle       = "IDLE"
	StateRefreshing = "REFRESHING"
	StatePaused     = "PAUSED"
)

// Loader is the part of catalog.Store the runner needs.
type Loader interface {
	Load(ctx context.Context) (catalog.Summary, error)
	ForceRefresh(ctx context.Context) (catalog.Summary, error)
}

// Broadcaster publishes events to connected clients.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// Command represents an external command sent to the runner via its
// Commands channel. The Reply channel receives exactly one result.
type Command struct {
	Type  string
	Reply chan<- CommandResult
}

// CommandResult is the response sent back through a Command's Reply channel.
type CommandResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Accepted int    `json:"accepted,omitempty"`
	Rejected int    `json:"rejected,omitempty"`
}

// Runner owns the reload loop.
type Runner struct {
	Hub      Broadcaster
	Store    Loader
	Log      *log.Logger
	Interval time.Duration

	// Commands receives external commands from HTTP handlers. The runner
	// checks this channel while sleeping between reloads.
	Commands chan Command

	// RetryDelay is how long to wait after a failed load.
	RetryDelay time.Duration

	// OnLoad, if set, is called after every load attempt, scheduled or forced.
	OnLoad func(sum catalog.Summary, err error)

	paused      atomic.Bool
	lastSummary atomic.Pointer[catalog.Summary]
}

// New creates a runner reloading every interval.
func New(hub Broadcaster, store Loader, interval time.Duration, logger *log.Logger) *Runner {
	return &Runner{
		Hub:        hub,
		Store:      store,
		Log:        logger,
		Interval:   interval,
		Commands:   make(chan Command, 4),
		RetryDelay: 5 * time.Minute,
	}
}

// IsPaused reports whether periodic reloads are paused.
func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

// LastSummary returns the result of the most recent successful load.
func (r *Runner) LastSummary() *catalog.Summary {
	return r.lastSummary.Load()
}

// Run is the main reload loop.
//
// Lifecycle:
//  1. Load the catalog (REFRESHING)
//  2. Sleep for the refresh interval (IDLE), serving commands
//  3. If paused, sleep until resumed (PAUSED)
//  4. Loop back to step 1
func (r *Runner) Run(ctx context.Context, setState func(string)) {
	r.logEvent("info", "refresh loop started")

	for {
		if ctx.Err() != nil {
			return
		}

		if r.paused.Load() {
			setState(StatePaused)
			// Sleep for a very long time; a resume command will interrupt.
			if r.sleepOrCommand(ctx, 24*365*time.Hour, setState) == sleepCancelled {
				return
			}
			continue
		}

		setState(StateRefreshing)
		sum, err := r.Store.Load(ctx)
		r.loaded(sum, err)
		wait := r.Interval
		if err != nil {
			r.logEvent("error", "catalog load failed: "+err.Error())
			wait = r.RetryDelay
		} else {
			r.published(sum)
		}
		setState(StateIdle)

		if r.sleepOrCommand(ctx, wait, setState) == sleepCancelled {
			return
		}
	}
}

func (r *Runner) loaded(sum catalog.Summary, err error) {
	if r.OnLoad != nil {
		r.OnLoad(sum, err)
	}
}

func (r *Runner) published(sum catalog.Summary) {
	r.lastSummary.Store(&sum)
	r.Hub.BroadcastJSON(telemetry.CatalogRefreshed{
		Event:    telemetry.NewEvent(telemetry.EventCatalogRefreshed, "refresh"),
		Source:   sum.Source,
		Accepted: sum.Accepted,
		Rejected: sum.Rejected,
	})
	r.logEvent("info", fmt.Sprintf("catalog loaded from %s: %d accepted, %d rejected", sum.Source, sum.Accepted, sum.Rejected))
}

// sleepResult indicates what ended a sleep period.
type sleepResult int

const (
	sleepCompleted   sleepResult = iota // timer expired normally
	sleepCancelled                      // context was cancelled
	sleepInterrupted                    // a command was received and handled
)

// sleepOrCommand blocks for duration d, until ctx is cancelled, or until a
// command arrives on r.Commands. Commands are handled inline; the remaining
// sleep is not resumed, so a handled command always restarts the loop.
func (r *Runner) sleepOrCommand(ctx context.Context, d time.Duration, setState func(string)) sleepResult {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return sleepCancelled
	case <-t.C:
		return sleepCompleted
	case cmd := <-r.Commands:
		r.handleCommand(ctx, cmd, setState)
		return sleepInterrupted
	}
}

// handleCommand dispatches an incoming command.
func (r *Runner) handleCommand(ctx context.Context, cmd Command, setState func(string)) {
	switch cmd.Type {
	case "refresh":
		r.handleRefresh(ctx, cmd, setState)
	case "pause":
		if r.paused.Swap(true) {
			cmd.Reply <- CommandResult{OK: true, Message: "refresh already paused"}
			return
		}
		r.logEvent("info", "periodic refresh paused by user")
		cmd.Reply <- CommandResult{OK: true, Message: "refresh paused"}
	case "resume":
		if !r.paused.Swap(false) {
			cmd.Reply <- CommandResult{OK: true, Message: "refresh already running"}
			return
		}
		r.logEvent("info", "periodic refresh resumed by user")
		cmd.Reply <- CommandResult{OK: true, Message: "refresh resumed"}
	default:
		cmd.Reply <- CommandResult{OK: false, Error: "unknown command: " + cmd.Type}
	}
}

// handleRefresh forces a network reload. The previous snapshot stays in
// place when the fetch fails.
func (r *Runner) handleRefresh(ctx context.Context, cmd Command, setState func(string)) {
	setState(StateRefreshing)
	defer func() {
		if r.paused.Load() {
			setState(StatePaused)
		} else {
			setState(StateIdle)
		}
	}()

	sum, err := r.Store.ForceRefresh(ctx)
	r.loaded(sum, err)
	if err != nil {
		r.logEvent("error", "forced refresh failed: "+err.Error())
		cmd.Reply <- CommandResult{OK: false, Error: "catalog refresh failed: " + err.Error()}
		return
	}
	r.published(sum)
	cmd.Reply <- CommandResult{
		OK:       true,
		Message:  fmt.Sprintf("catalog refreshed, %d element sets loaded", sum.Accepted),
		Accepted: sum.Accepted,
		Rejected: sum.Rejected,
	}
}

func (r *Runner) logEvent(level, msg string) {
	if r.Log != nil {
		r.Log.Printf("refresh: %s", msg)
	}
	r.Hub.BroadcastJSON(telemetry.LogLine{
		Event:   telemetry.NewEvent(telemetry.EventLog, "refresh"),
		Level:   level,
		Message: msg,
	})
}
