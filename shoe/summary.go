package shoe

import (
	"baccarat-lite/outcome"
	"baccarat-lite/road"

	"gonum.org/v1/gonum/stat"
)

// Summary is the end-of-shoe report.
type Summary struct {
	Hands  int `json:"hands"`
	Banker int `json:"banker"`
	Player int `json:"player"`
	Tie    int `json:"tie"`

	// Longest run of one non-tie outcome; ties inside the run do not break it.
	LongestStreak        int             `json:"longest_streak"`
	LongestStreakOutcome outcome.Outcome `json:"longest_streak_outcome,omitempty"`

	Columns      int     `json:"columns"`
	ColumnMean   float64 `json:"column_mean"`
	ColumnStdDev float64 `json:"column_stddev"`
	DragonCount  int     `json:"dragon_count"`
	LeadingTies  int     `json:"leading_ties,omitempty"`
	Tally        Tally   `json:"tally"`
	HitRate      float64 `json:"hit_rate"`
}

// Summarize counts hands and describes big-road column lengths.
func Summarize(hands []outcome.Hand, tally Tally) Summary {
	sum := Summary{Hands: len(hands), Tally: tally, HitRate: tally.HitRate()}
	for _, h := range hands {
		switch h.Outcome {
		case outcome.Banker:
			sum.Banker++
		case outcome.Player:
			sum.Player++
		case outcome.Tie:
			sum.Tie++
		}
	}

	br := road.BuildBigRoad(outcome.Outcomes(hands))
	sum.Columns = len(br.Columns)
	sum.LeadingTies = br.LeadingTies
	dragonMin := road.DefaultPatternConfig().DragonMin
	heights := make([]float64, 0, len(br.Columns))
	for _, col := range br.Columns {
		n := col.Len()
		heights = append(heights, float64(n))
		if n > sum.LongestStreak {
			sum.LongestStreak = n
			sum.LongestStreakOutcome = col.Outcome
		}
		if n >= dragonMin {
			sum.DragonCount++
		}
	}
	switch len(heights) {
	case 0:
	case 1:
		sum.ColumnMean = heights[0]
	default:
		sum.ColumnMean, sum.ColumnStdDev = stat.MeanStdDev(heights, nil)
	}
	return sum
}
