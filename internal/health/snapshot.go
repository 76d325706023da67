package health

import (
	"math"
	"time"

	"github.com/apifolio/folio/internal/state"
)

const (
	// RecoveryUptime is the uptime reported on the first successful check
	// after being offline.
	RecoveryUptime = 99.9
	// DecayStep is subtracted from uptime on every failed check.
	DecayStep = 0.1
)

// Snapshot is the latest health check result. It is replaced wholesale on
// every check.
type Snapshot struct {
	Status         state.Status `json:"status"`
	ResponseTimeMs int64        `json:"responseTime"`
	UptimePercent  float64      `json:"uptime"`
	LastCheck      time.Time    `json:"lastCheck"`
}

// Initial is the snapshot a poller starts with.
func Initial(now time.Time) Snapshot {
	return Snapshot{Status: state.StatusOffline, LastCheck: now}
}

// Succeeded derives the snapshot after a check that answered in elapsed.
// Uptime is kept while staying online and reset to RecoveryUptime otherwise.
func Succeeded(prev Snapshot, elapsed time.Duration, now time.Time) Snapshot {
	uptime := RecoveryUptime
	if prev.Status == state.StatusOnline {
		uptime = prev.UptimePercent
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return Snapshot{
		Status:         state.StatusOnline,
		ResponseTimeMs: int64(math.Round(float64(elapsed) / float64(time.Millisecond))),
		UptimePercent:  uptime,
		LastCheck:      now,
	}
}

// Failed derives the snapshot after a failed check. Uptime decays by
// DecayStep and never drops below zero.
func Failed(prev Snapshot, now time.Time) Snapshot {
	return Snapshot{
		Status:         state.StatusOffline,
		ResponseTimeMs: 0,
		UptimePercent:  decay(prev.UptimePercent),
		LastCheck:      now,
	}
}

// decay rounds to one decimal so repeated steps do not drift.
func decay(uptime float64) float64 {
	return math.Max(0, math.Round((uptime-DecayStep)*10)/10)
}
