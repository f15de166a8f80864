// Package health reports whether the datasets are loaded and fresh enough to serve.
package health

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/giygas/vetref/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	refreshAt []clock
	now       func() time.Time
}

type clock struct {
	hour, minute int
}

// NewHealthChecker creates a health checker. refreshAt is the REFRESH_AT schedule
// ("HH:MM;HH:MM"); when empty the data never goes stale.
func NewHealthChecker(dataStore interfaces.DataStore, refreshAt string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		refreshAt: parseSchedule(refreshAt),
		now:       time.Now,
	}
}

func parseSchedule(spec string) []clock {
	var out []clock
	for _, part := range strings.Split(spec, ";") {
		t, err := time.Parse("15:04", strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, clock{t.Hour(), t.Minute()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].hour*60+out[i].minute < out[j].hour*60+out[j].minute
	})
	return out
}

// HealthCheck returns the status, the data details and the HTTP status for /health
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	loaded := h.dataStore.IsLoaded()
	vetlek := h.dataStore.GetVetLek()
	vidal := h.dataStore.GetVidal()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	monographs := h.dataStore.GetMonographs()

	dataAge := h.now().Sub(lastUpdate)

	switch {
	case !loaded:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case len(vetlek) == 0 && len(vidal) == 0:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case len(h.refreshAt) > 0 && dataAge > 48*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"vetlek":            len(vetlek),
		"vidal":             len(vidal),
		"is_updating":       isUpdating,
		"monographs_cached": monographs != nil && monographs.Loaded(),
	}
	if loaded {
		data["last_update"] = lastUpdate.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10
	}
	if next := h.CalculateNextUpdate(); !next.IsZero() {
		data["next_update"] = next.Format(time.RFC3339)
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled refresh time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	if len(h.refreshAt) == 0 {
		return time.Time{}
	}

	now := h.now()
	for _, c := range h.refreshAt {
		at := time.Date(now.Year(), now.Month(), now.Day(), c.hour, c.minute, 0, 0, now.Location())
		if now.Before(at) {
			return at
		}
	}

	first := h.refreshAt[0]
	return time.Date(now.Year(), now.Month(), now.Day(), first.hour, first.minute, 0, 0, now.Location()).AddDate(0, 0, 1)
}
