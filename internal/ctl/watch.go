package ctl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Filter []string // event types to show (empty = all)
	JSON   bool     // output raw JSON per event
}

// watchURL converts the daemon's HTTP base URL into its WebSocket endpoint,
// passing the event filter to the server.
func watchURL(baseURL string, filter []string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	if len(filter) > 0 {
		u.RawQuery = url.Values{"types": {strings.Join(filter, ",")}}.Encode()
	}
	return u.String(), nil
}

// Watch connects to the daemon's WebSocket endpoint and streams events to
// the terminal in a human-readable format until interrupted.
func Watch(baseURL string, opts WatchOptions) error {
	wsURL, err := watchURL(baseURL, opts.Filter)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !opts.JSON {
		fmt.Println()
		fmt.Printf("  %s %s\n", colorize(green, "connected"), colorize(dim, wsURL))
		if len(opts.Filter) > 0 {
			fmt.Printf("  %s %s\n", colorize(dim, "filter:"), colorize(dim, strings.Join(opts.Filter, ", ")))
		}
		fmt.Println(rule(50))
		fmt.Println()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if opts.JSON {
				fmt.Println(string(msg))
			} else {
				fmt.Print(renderEvent(msg))
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		if !opts.JSON {
			fmt.Println()
			fmt.Println(colorize(dim, "  disconnecting..."))
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(1*time.Second),
		)
		return nil
	case <-done:
		return nil
	}
}

// renderEvent formats a JSON event for the terminal. Unrecognized event
// types fall back to indented JSON.
func renderEvent(raw []byte) string {
	var ev map[string]any
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Sprintf("  %s\n", string(raw))
	}

	evType, _ := ev["type"].(string)
	ts := formatEventTime(ev)

	switch evType {
	case "heartbeat":
		// Heartbeats are noisy, so they get a single dimmed line.
		state, _ := ev["state"].(string)
		uptime, _ := ev["uptime_seconds"].(float64)
		uptimeStr := formatDuration(time.Duration(uptime) * time.Second)
		return fmt.Sprintf("  %s %s  %s  up %s\n",
			colorize(dim, ts),
			colorize(dim, "heartbeat"),
			colorize(stateColor(state), state),
			colorize(dim, uptimeStr),
		)

	case "state":
		from, _ := ev["from"].(string)
		to, _ := ev["to"].(string)
		return fmt.Sprintf("  %s %s  %s %s %s\n",
			colorize(dim, ts),
			colorize(bold, "STATE"),
			colorize(stateColor(from), from),
			colorize(dim, "->"),
			colorize(stateColor(to), to),
		)

	case "log":
		level, _ := ev["level"].(string)
		message, _ := ev["message"].(string)
		component, _ := ev["component"].(string)
		src := ""
		if component != "" {
			src = colorize(dim, "["+component+"] ")
		}
		return fmt.Sprintf("  %s %s  %s%s\n", colorize(dim, ts), formatLogLevel(level), src, message)

	case "parsed":
		ok, _ := ev["ok"].(bool)
		_, hasAccepted := ev["accepted"]
		_, hasRejected := ev["rejected"]
		if hasAccepted || hasRejected {
			accepted, _ := ev["accepted"].(float64)
			rejected, _ := ev["rejected"].(float64)
			return fmt.Sprintf("  %s %s  bulk: %d accepted, %d rejected\n",
				colorize(dim, ts), colorize(cyan, "PARSED"), int(accepted), int(rejected))
		}
		if !ok {
			kind, _ := ev["kind"].(string)
			msg, _ := ev["error"].(string)
			return fmt.Sprintf("  %s %s  %s %s\n",
				colorize(dim, ts), colorize(red, "REJECT"), colorize(yellow, kind), msg)
		}
		id, _ := ev["catalog_number"].(float64)
		name, _ := ev["name"].(string)
		if name == "" {
			name = colorize(dim, "(no name)")
		}
		return fmt.Sprintf("  %s %s  %05d %s\n", colorize(dim, ts), colorize(green, "PARSED"), int(id), name)

	case "catalog_refreshed":
		source, _ := ev["source"].(string)
		accepted, _ := ev["accepted"].(float64)
		rejected, _ := ev["rejected"].(float64)
		return fmt.Sprintf("  %s %s  %d sets from %s, %d rejected\n",
			colorize(dim, ts), header("CATALOG"), int(accepted), source, int(rejected))

	default:
		pretty, err := json.MarshalIndent(ev, "  ", "  ")
		if err != nil {
			return fmt.Sprintf("  %s\n", string(raw))
		}
		return fmt.Sprintf("  %s\n", string(pretty))
	}
}

// formatEventTime extracts and shortens the timestamp from an event.
func formatEventTime(ev map[string]any) string {
	tsRaw, ok := ev["ts"].(string)
	if !ok {
		return "        "
	}
	t, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		if len(tsRaw) > 10 {
			return tsRaw[:10]
		}
		return tsRaw
	}
	return t.Local().Format("15:04:05")
}
