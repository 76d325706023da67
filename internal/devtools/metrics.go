package devtools

import (
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/apifolio/folio/internal/health"
	"github.com/apifolio/folio/internal/state"
)

// metricsFormat is the exposition format served on /debug/metrics.
var metricsFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// gatherMetrics builds metric families from the current state, the recorded
// action counts and the latest health snapshot. snap may be nil.
func gatherMetrics(s state.State, counts map[string]uint64, snap *health.Snapshot, clients int) []*dto.MetricFamily {
	var families []*dto.MetricFamily

	actions := family("folio_actions_total", "Store actions dispatched, by action name.", dto.MetricType_COUNTER)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := float64(counts[name])
		actions.Metric = append(actions.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{label("action", name)},
			Counter: &dto.Counter{Value: &v},
		})
	}
	if len(actions.Metric) > 0 {
		families = append(families, actions)
	}

	apis := family("folio_apis", "Catalog APIs, by status.", dto.MetricType_GAUGE)
	byStatus := map[state.Status]int{}
	for _, api := range s.APIs {
		byStatus[api.Status]++
	}
	for _, status := range []state.Status{state.StatusOnline, state.StatusOffline, state.StatusMaintenance} {
		apis.Metric = append(apis.Metric, gauge(float64(byStatus[status]), label("status", string(status))))
	}
	families = append(families, apis)

	loading := family("folio_loading", "1 while the store reports a loading operation.", dto.MetricType_GAUGE)
	loading.Metric = append(loading.Metric, gauge(boolValue(s.IsLoading)))
	families = append(families, loading)

	if snap != nil {
		up := family("folio_health_up", "1 when the last health check succeeded.", dto.MetricType_GAUGE)
		up.Metric = append(up.Metric, gauge(boolValue(snap.Status == state.StatusOnline)))
		rt := family("folio_health_response_time_ms", "Latency of the last successful health check.", dto.MetricType_GAUGE)
		rt.Metric = append(rt.Metric, gauge(float64(snap.ResponseTimeMs)))
		uptime := family("folio_health_uptime_percent", "Uptime estimate maintained by the health poller.", dto.MetricType_GAUGE)
		uptime.Metric = append(uptime.Metric, gauge(snap.UptimePercent))
		families = append(families, up, rt, uptime)
	}

	ws := family("folio_devtools_ws_clients", "Connected devtools WebSocket clients.", dto.MetricType_GAUGE)
	ws.Metric = append(ws.Metric, gauge(float64(clients)))
	families = append(families, ws)

	return families
}

func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, metricsFormat)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func family(name, help string, typ dto.MetricType) *dto.MetricFamily {
	return &dto.MetricFamily{Name: &name, Help: &help, Type: typ.Enum()}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: &v}}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
