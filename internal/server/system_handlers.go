package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/phasespace/internal/database"
)

// SnapshotCounter reports how many snapshots are stored
type SnapshotCounter interface {
	Count() (int, error)
}

// SystemHandlers serves health and host status endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	snapshots SnapshotCounter
	startedAt time.Time
}

// NewSystemHandlers creates a new SystemHandlers. snapshots may be nil.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, snapshots SnapshotCounter) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		db:        db,
		snapshots: snapshots,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	Snapshots     int     `json:"snapshots"`
	Database      string  `json:"database"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "healthy"}
	if err := h.checkDatabase(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Health check failed")
		status = http.StatusServiceUnavailable
		body = map[string]string{"status": "unhealthy", "error": err.Error()}
	}
	h.writeJSON(w, status, body)
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	resp := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / (1024 * 1024),
		Database:      "ok",
	}

	if err := h.checkDatabase(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
	} else if h.snapshots != nil {
		n, err := h.snapshots.Count()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count snapshots")
		}
		resp.Snapshots = n
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *SystemHandlers) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.QuickCheck(ctx)
}

// getSystemStats returns the CPU and RAM usage percentages of the host
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// Sample CPU over 100ms to keep the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
