package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/large-farva/tle2json/internal/catalog"
	"github.com/large-farva/tle2json/internal/config"
	"github.com/large-farva/tle2json/internal/refresh"
	"github.com/large-farva/tle2json/internal/telemetry"
	"github.com/large-farva/tle2json/internal/tle"
)

// maxParseBody caps POST /api/parse request bodies. A bulk catalog of a few
// hundred sets fits comfortably.
const maxParseBody = 1 << 20

// ---------------------------------------------------------------------------
// Core handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// If the client asks for JSON, return component-level health checks.
	if r.Header.Get("Accept") == "application/json" {
		a.handleHealthDetailed(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleHealthDetailed(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]any{}
	allOK := true

	// Check data directory.
	tmpPath := filepath.Join(a.cfg.Data.Root, ".healthcheck")
	if err := os.WriteFile(tmpPath, []byte("ok"), 0o644); err != nil {
		checks["data_dir"] = map[string]any{"ok": false, "error": err.Error()}
		allOK = false
	} else {
		os.Remove(tmpPath)
		checks["data_dir"] = map[string]any{"ok": true, "path": a.cfg.Data.Root}
	}

	// Catalog must have loaded at least once.
	if snap := a.store.Snapshot(); snap == nil {
		checks["catalog"] = map[string]any{"ok": false, "error": "catalog not loaded"}
		allOK = false
	} else {
		checks["catalog"] = map[string]any{"ok": true, "source": snap.Source, "entries": snap.Len()}
	}

	// Cache freshness is informational only.
	ci := a.store.CacheInfo()
	checks["catalog_cache"] = map[string]any{"ok": ci.Exists && ci.Fresh, "age_s": ci.AgeS, "fresh": ci.Fresh}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy": allOK,
		"checks":  checks,
	})
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"name":           "tled",
		"state":          a.state.Load().(string),
		"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
		"data_root":      a.cfg.Data.Root,
		"strict":         a.cfg.Parser.Strict,
		"paused":         a.runner.IsPaused(),
		"ws_clients":     a.wsHub.Clients(),
		"parse": map[string]any{
			"ok":     a.parseOK.Load(),
			"failed": a.parseFailed.Load(),
		},
	}

	if snap := a.store.Snapshot(); snap != nil {
		resp["catalog"] = map[string]any{
			"source":    snap.Source,
			"loaded_at": snap.LoadedAt.Format(time.RFC3339),
			"entries":   snap.Len(),
			"rejected":  snap.Rejected,
		}
	}

	if du := diskUsage(a.cfg.Data.Root); du != nil {
		resp["disk"] = du
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	})
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg)
}

func (a *App) handleConfigProfiles(w http.ResponseWriter, _ *http.Request) {
	dir := config.DefaultConfigDir()
	profiles, err := config.ListProfiles(dir)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if profiles == nil {
		profiles = []config.ProfileInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config_dir": dir,
		"active":     a.configPath,
		"profiles":   profiles,
	})
}

func (a *App) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := a.logs.snapshot()

	// Apply filters.
	if level := r.URL.Query().Get("level"); level != "" {
		filtered := []logEntry{}
		for _, e := range entries {
			if e.Level == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type setErrorJSON struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func (a *App) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Each request gets an ID so a client can match its response to the
	// parsed event on the WebSocket stream.
	reqID := uuid.New().String()
	w.Header().Set("X-Request-Id", reqID)

	p := tle.Parser{Strict: a.cfg.Parser.Strict || queryBool(r, "strict")}

	if queryBool(r, "bulk") {
		a.parseBulk(w, reqID, p, string(body))
		return
	}

	rec, err := p.Parse(string(body))
	if err != nil {
		a.parseFailed.Add(1)
		a.metrics.ObserveParse(tle.Kind(err))
		a.BroadcastJSON(telemetry.Parsed{
			Event:     telemetry.NewEvent(telemetry.EventParsed, "parser"),
			RequestID: reqID,
			Kind:      tle.Kind(err),
			Error:     err.Error(),
		})
		a.logEvent("debug", "parse rejected ["+reqID+"]: "+err.Error())
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"ok":         false,
			"kind":       tle.Kind(err),
			"error":      err.Error(),
			"request_id": reqID,
		})
		return
	}

	a.parseOK.Add(1)
	a.metrics.ObserveParse("")
	a.BroadcastJSON(telemetry.Parsed{
		Event:         telemetry.NewEvent(telemetry.EventParsed, "parser"),
		RequestID:     reqID,
		OK:            true,
		CatalogNumber: rec.CatalogNumber,
		Name:          rec.DisplayName(),
	})
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) parseBulk(w http.ResponseWriter, reqID string, p tle.Parser, text string) {
	records, setErrs := p.ParseAll(text)
	a.parseOK.Add(int64(len(records)))
	a.parseFailed.Add(int64(len(setErrs)))

	for range records {
		a.metrics.ObserveParse("")
	}
	errs := make([]setErrorJSON, len(setErrs))
	for i, se := range setErrs {
		errs[i] = setErrorJSON{Index: se.Index, Kind: tle.Kind(se.Err), Error: se.Err.Error()}
		a.metrics.ObserveParse(errs[i].Kind)
	}
	if records == nil {
		records = []tle.Record{}
	}

	a.BroadcastJSON(telemetry.Parsed{
		Event:     telemetry.NewEvent(telemetry.EventParsed, "parser"),
		RequestID: reqID,
		OK:        len(setErrs) == 0,
		Accepted:  len(records),
		Rejected:  len(setErrs),
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"request_id": reqID,
		"accepted":   len(records),
		"rejected":   len(setErrs),
		"records":    records,
		"errors":     errs,
	})
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (a *App) handleCatalog(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	if snap == nil {
		jsonError(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}

	entries := snap.List(r.URL.Query().Get("name"))
	total := len(entries)
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		if n, err := strconv.Atoi(countStr); err == nil && n > 0 && n < len(entries) {
			entries = entries[:n]
		}
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"source":    snap.Source,
		"loaded_at": snap.LoadedAt.Format(time.RFC3339),
		"total":     total,
		"entries":   entries,
	})
}

func (a *App) handleCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		jsonError(w, "catalog number must be a non-negative integer", http.StatusBadRequest)
		return
	}
	if a.store.Snapshot() == nil {
		jsonError(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	e, ok := a.store.Lookup(id)
	if !ok {
		jsonError(w, "catalog number "+strconv.Itoa(id)+" not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (a *App) handleCatalogInfo(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"cache": a.store.CacheInfo()}
	if sum := a.runner.LastSummary(); sum != nil {
		resp["last_load"] = sum
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Refresh controls
// ---------------------------------------------------------------------------

func (a *App) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	a.runnerControl(w, r, "refresh")
}

func (a *App) handlePause(w http.ResponseWriter, r *http.Request) {
	a.runnerControl(w, r, "pause")
}

func (a *App) handleResume(w http.ResponseWriter, r *http.Request) {
	a.runnerControl(w, r, "resume")
}

func (a *App) runnerControl(w http.ResponseWriter, r *http.Request, cmd string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := a.sendRunnerCommand(r.Context(), cmd)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeCommandResult(w, result)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// sendRunnerCommand sends a command to the refresh runner and waits for the
// reply or for the request to be abandoned.
func (a *App) sendRunnerCommand(ctx context.Context, cmdType string) (refresh.CommandResult, error) {
	reply := make(chan refresh.CommandResult, 1)
	select {
	case a.runner.Commands <- refresh.Command{Type: cmdType, Reply: reply}:
	case <-ctx.Done():
		return refresh.CommandResult{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return refresh.CommandResult{}, ctx.Err()
	}
}

func queryBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{
		"ok":    false,
		"error": msg,
	})
}

// writeCommandResult writes a refresh.CommandResult as JSON.
func writeCommandResult(w http.ResponseWriter, result refresh.CommandResult) {
	status := http.StatusOK
	if !result.OK {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}
