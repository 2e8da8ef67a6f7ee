package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
)

var startTime = time.Now()

type MetricsHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
}

func NewMetricsHandler(db *gorm.DB, queue services.TaskQueue) *MetricsHandler {
	return &MetricsHandler{db: db, queue: queue}
}

// Metrics returns Prometheus-compatible text format metrics.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	// -- Runtime metrics --
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "lune_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "lune_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "lune_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))

	// -- Database metrics --
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "lune_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "lune_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
	}

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "lune_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", queueAsync)

	// -- Domain metrics --
	var byStatus []struct {
		Status string
		Count  int64
	}
	h.db.Model(&models.MeetingRequest{}).Select("status, COUNT(*) as count").Group("status").Scan(&byStatus)
	writeHeader(&b, "lune_meeting_requests", "Meeting requests by status")
	for _, row := range byStatus {
		fmt.Fprintf(&b, "lune_meeting_requests{status=%q} %d\n", row.Status, row.Count)
	}
	b.WriteString("\n")

	var byTier []struct {
		Tier  string
		Count int64
	}
	h.db.Model(&models.Member{}).Select("tier, COUNT(*) as count").Group("tier").Scan(&byTier)
	writeHeader(&b, "lune_members", "Member profiles by tier")
	for _, row := range byTier {
		fmt.Fprintf(&b, "lune_members{tier=%q} %d\n", row.Tier, row.Count)
	}
	b.WriteString("\n")

	var activeCasts, pendingVerifications int64
	h.db.Model(&models.Cast{}).Where("is_active = ?", true).Count(&activeCasts)
	h.db.Model(&models.User{}).Where("verification_status = ?", models.VerificationPending).Count(&pendingVerifications)
	writeGauge(&b, "lune_casts_active", "Casts visible in the directory", float64(activeCasts))
	writeGauge(&b, "lune_verifications_pending", "Accounts awaiting verification", float64(pendingVerifications))

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeHeader(b *strings.Builder, name, help string) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	writeHeader(b, name, help)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
