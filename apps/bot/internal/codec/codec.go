// Package codec renders engine results as chat replies.
package codec

import (
	"fmt"
	"strings"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
	"baccarat-lite/shoe"
)

const (
	HelpText       = "請輸入整局（莊閒和）、前三把（閒莊閒）、或點數（84 表示閒8莊4）。輸入「路」看牌路，「結束」結算，「重置」清空。"
	NoShoeText     = "尚未有對局資料，請先開始一場對局"
	ResetText      = "已重置，請輸入前三把結果（例如：莊閒閒）"
	SeededText     = "已記錄前三把結果"
	FailureText    = "系統忙碌，請稍後再試"
	noPatternText  = "無明顯牌路"
	tailMarksShown = 6
)

var patternNames = map[road.PatternKind]string{
	road.PatternDragon:            "長龍",
	road.PatternSingleAlternation: "單跳",
	road.PatternDoubleAlternation: "雙跳",
	road.PatternOneHallTwoRooms:   "一廳兩房",
	road.PatternSlope:             "斜坡",
	road.PatternPairStick:         "逢對",
}

var derivedNames = map[road.DerivedKind]string{
	road.BigEyeBoy: "大眼仔",
	road.SmallRoad: "小路",
	road.Cockroach: "曱甴路",
}

// Recommendation renders the verdict line.
func Recommendation(rec road.Recommendation) string {
	switch rec.Verdict {
	case road.VerdictBet:
		return "推薦:" + rec.Outcome.Symbol()
	case road.VerdictHold:
		return "看一把"
	case road.VerdictNoBet:
		return "觀望，本把不下注"
	case road.VerdictInsufficientHistory:
		return "資料不足，請繼續輸入"
	}
	return "?"
}

// Patterns renders findings; an empty list is stated explicitly.
func Patterns(findings []road.PatternFinding) string {
	if len(findings) == 0 {
		return "牌路:" + noPatternText
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		name := patternNames[f.Kind]
		if name == "" {
			name = string(f.Kind)
		}
		if f.Kind == road.PatternDragon {
			name += "(" + f.Value.Symbol() + ")"
		}
		parts = append(parts, name)
	}
	return "牌路:" + strings.Join(parts, " ")
}

// Hand echoes a recorded hand, with points when known.
func Hand(h outcome.Hand) string {
	if h.HasPoints {
		return fmt.Sprintf("閒%d，莊%d → %s", h.Player, h.Banker, h.Outcome.Symbol())
	}
	return "已記錄:" + h.Outcome.Symbol()
}

// Score reports how the previous recommendation fared.
func Score(hit bool, tally shoe.Tally) string {
	verdict := "上把未中"
	if hit {
		verdict = "上把命中"
	}
	return fmt.Sprintf("%s（%d中 %d失）", verdict, tally.Hits, tally.Misses)
}

// Reply joins non-empty lines.
func Reply(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// Counts is the short tally used for imports.
func Counts(sum shoe.Summary) string {
	return fmt.Sprintf("莊:%d 閒:%d 和:%d", sum.Banker, sum.Player, sum.Tie)
}

// Summary is the end-of-shoe report.
func Summary(sum shoe.Summary) string {
	lines := []string{
		"本靴統計：",
		fmt.Sprintf("莊：%d", sum.Banker),
		fmt.Sprintf("閒：%d", sum.Player),
		fmt.Sprintf("和：%d", sum.Tie),
	}
	if sum.LongestStreak > 0 {
		lines = append(lines, fmt.Sprintf("最長連：%d（%s）", sum.LongestStreak, sum.LongestStreakOutcome.Symbol()))
	}
	if sum.Columns > 0 {
		lines = append(lines, fmt.Sprintf("大路 %d 列，平均長度 %.2f，標準差 %.2f", sum.Columns, sum.ColumnMean, sum.ColumnStdDev))
	}
	if sum.Tally.Total() > 0 {
		lines = append(lines, fmt.Sprintf("推薦 %d 中 %d 失，命中率 %.0f%%", sum.Tally.Hits, sum.Tally.Misses, sum.HitRate*100))
	}
	return strings.Join(lines, "\n")
}

// Board renders the big road column by column and the tail of each derived road.
func Board(snap road.Snapshot) string {
	if len(snap.Hands) == 0 {
		return NoShoeText
	}
	var sb strings.Builder
	sb.WriteString("大路:")
	for _, col := range snap.Roads.BigRoad.Columns {
		sb.WriteString(" ")
		for _, cell := range col.Cells {
			sb.WriteString(col.Outcome.Symbol())
			if cell.Ties > 0 {
				fmt.Fprintf(&sb, "(和%d)", cell.Ties)
			}
		}
	}
	if lt := snap.Roads.BigRoad.LeadingTies; lt > 0 {
		fmt.Fprintf(&sb, "\n開局和:%d", lt)
	}
	for _, d := range snap.Roads.Derived() {
		fmt.Fprintf(&sb, "\n%s:", derivedNames[d.Kind])
		tail := d.Tail(tailMarksShown)
		if len(tail) == 0 {
			sb.WriteString(" -")
			continue
		}
		sb.WriteString(" ")
		for _, m := range tail {
			if m == road.MarkMatch {
				sb.WriteString("紅")
			} else {
				sb.WriteString("藍")
			}
		}
	}
	sb.WriteString("\n")
	sb.WriteString(Patterns(snap.Patterns))
	return sb.String()
}
