package scoring

import "github.com/courtside/volleytrack/models"

// Leaderboard weights. Plain totals use unweighted sums; the leaderboard
// applies per-stat weights and floors the result at zero.
const (
	weightPoints = 3.0
	weightSpikes = 2.0
	weightAces   = 2.0
	weightBlocks = 1.5
	weightTips   = 1.0
	weightDigs   = 1.0
	weightFault  = -1.0
)

// Aggregate sums every counter across a collection of per-match,
// per-set stat rows. Zero rows yield all-zero totals, never an error;
// absent data is simply treated as zero.
func Aggregate(rows []models.PlayerStats) models.PlayerStats {
	var total models.PlayerStats
	for _, r := range rows {
		total.Aces += r.Aces
		total.Spikes += r.Spikes
		total.Blocks += r.Blocks
		total.Tips += r.Tips
		total.Dumps += r.Dumps
		total.Digs += r.Digs
		total.Points += r.Points

		total.ServeErrors += r.ServeErrors
		total.SpikeErrors += r.SpikeErrors
		total.NetTouches += r.NetTouches
		total.FootFaults += r.FootFaults
		total.Carries += r.Carries
		total.Reaches += r.Reaches
		total.OutOfBounds += r.OutOfBounds
		total.Faults += r.Faults

		total.NeutralBlocks += r.NeutralBlocks
	}
	return total
}

// TotalEarned is the unweighted sum of the earned counters.
func TotalEarned(s models.PlayerStats) int {
	return s.Aces + s.Spikes + s.Blocks + s.Tips + s.Dumps + s.Digs + s.Points
}

// TotalFaults is the unweighted sum of the fault counters.
func TotalFaults(s models.PlayerStats) int {
	return s.ServeErrors + s.SpikeErrors + s.NetTouches + s.FootFaults +
		s.Carries + s.Reaches + s.OutOfBounds + s.Faults
}

// LeaderboardScore applies the per-stat weights, every fault counting -1,
// floored at zero.
func LeaderboardScore(s models.PlayerStats) float64 {
	score := weightPoints*float64(s.Points) +
		weightSpikes*float64(s.Spikes) +
		weightAces*float64(s.Aces) +
		weightBlocks*float64(s.Blocks) +
		weightTips*float64(s.Tips) +
		weightDigs*float64(s.Digs) +
		weightFault*float64(TotalFaults(s))
	if score < 0 {
		return 0
	}
	return score
}
