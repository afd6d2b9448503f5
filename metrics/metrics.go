package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the narrow surface the services use, so tests can swap in
// the no-op implementation.
type Recorder interface {
	StatRecorded(category string)
	StatUndone()
	SetAdvanced()
	MatchFinalized()
}

type promRecorder struct {
	statsRecorded   *prometheus.CounterVec
	statsUndone     prometheus.Counter
	setsAdvanced    prometheus.Counter
	matchesFinished prometheus.Counter
}

func New() Recorder {
	return &promRecorder{
		statsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "volleytrack_stats_recorded_total",
			Help: "Stat events recorded, by category.",
		}, []string{"category"}),
		statsUndone: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volleytrack_stats_undone_total",
			Help: "Stat events reversed via undo.",
		}),
		setsAdvanced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volleytrack_sets_advanced_total",
			Help: "Set advances across all matches.",
		}),
		matchesFinished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volleytrack_matches_finalized_total",
			Help: "Matches finalized.",
		}),
	}
}

func (r *promRecorder) StatRecorded(category string) { r.statsRecorded.WithLabelValues(category).Inc() }
func (r *promRecorder) StatUndone()                  { r.statsUndone.Inc() }
func (r *promRecorder) SetAdvanced()                 { r.setsAdvanced.Inc() }
func (r *promRecorder) MatchFinalized()              { r.matchesFinished.Inc() }
