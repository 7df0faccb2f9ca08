package codec

import (
	"strings"
	"testing"

	"baccarat-lite/outcome"
	"baccarat-lite/road"
	"baccarat-lite/shoe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendation(t *testing.T) {
	assert.Equal(t, "推薦:莊", Recommendation(road.Bet(outcome.Banker, "")))
	assert.Equal(t, "推薦:閒", Recommendation(road.Bet(outcome.Player, "")))
	assert.Equal(t, "看一把", Recommendation(road.Hold("")))
	assert.Equal(t, "資料不足，請繼續輸入", Recommendation(road.InsufficientHistory("")))
	assert.Contains(t, Recommendation(road.NoBet("")), "不下注")
}

func TestPatterns(t *testing.T) {
	assert.Equal(t, "牌路:無明顯牌路", Patterns(nil))

	findings := road.DetectPatterns([]outcome.Outcome{outcome.Player, outcome.Banker, outcome.Banker, outcome.Banker, outcome.Banker}, road.DefaultPatternConfig())
	assert.Equal(t, "牌路:長龍(莊)", Patterns(findings))
}

func TestHand(t *testing.T) {
	h, err := outcome.ParsePointPair("84")
	require.NoError(t, err)
	assert.Equal(t, "閒8，莊4 → 閒", Hand(h))
	assert.Equal(t, "已記錄:和", Hand(outcome.Hand{Outcome: outcome.Tie}))
}

func TestReplySkipsEmptyLines(t *testing.T) {
	assert.Equal(t, "a\nb", Reply("a", "", "b"))
}

func TestSummary(t *testing.T) {
	sum := shoe.Summarize(outcome.Hands(outcome.Banker, outcome.Banker, outcome.Tie, outcome.Player), shoe.Tally{Hits: 1, Misses: 1})
	text := Summary(sum)
	assert.Contains(t, text, "莊：2")
	assert.Contains(t, text, "閒：1")
	assert.Contains(t, text, "和：1")
	assert.Contains(t, text, "最長連：2（莊）")
	assert.Contains(t, text, "命中率 50%")
	assert.Equal(t, "莊:2 閒:1 和:1", Counts(sum))
}

func TestBoard(t *testing.T) {
	s, err := road.RestoreSession(road.DefaultConfig(), outcome.Hands(
		outcome.Tie, outcome.Banker, outcome.Banker, outcome.Tie, outcome.Player, outcome.Banker,
	), nil)
	require.NoError(t, err)

	text := Board(s.Snapshot())
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "大路: 莊莊(和1) 閒 莊", lines[0])
	assert.Equal(t, "開局和:1", lines[1])
	assert.Equal(t, "大眼仔: 藍", lines[2])
	assert.Equal(t, "小路: -", lines[3])
	assert.Equal(t, "曱甴路: -", lines[4])
	assert.Equal(t, "牌路:無明顯牌路", lines[5])

	empty, err := road.NewSession(road.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, NoShoeText, Board(empty.Snapshot()))
}
