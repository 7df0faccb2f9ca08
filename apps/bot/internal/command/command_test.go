package command

import (
	"testing"

	"baccarat-lite/outcome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		text  string
		kind  Kind
		hands string
	}{
		{"結束", KindEnd, ""},
		{" END ", KindEnd, ""},
		{"重置", KindReset, ""},
		{"/reset", KindReset, ""},
		{"路", KindRoad, ""},
		{"/start", KindHelp, ""},
		{"莊", KindRecord, "B"},
		{"banker", KindRecord, "B"},
		{"t", KindRecord, "T"},
		{"84", KindRecord, "P"},
		{"莊閒", KindSeed, "BP"},
		{"閒莊閒", KindSeed, "PBP"},
		{"b p b", KindSeed, "BPB"},
		{"莊-閒-閒", KindSeed, "BPP"},
		{"b-p-t-b", KindImport, "BPTB"},
		{"莊閒和莊", KindImport, "BPTB"},
		{"莊,閒,閒,和,莊", KindImport, "BPPTB"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			cmd, err := Parse(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, cmd.Kind)
			assert.Equal(t, tc.hands, outcome.Letters(outcome.Outcomes(cmd.Hands)))
		})
	}
}

func TestParse_PointPairKeepsPoints(t *testing.T) {
	cmd, err := Parse("37")
	require.NoError(t, err)
	require.Len(t, cmd.Hands, 1)
	h := cmd.Hands[0]
	assert.True(t, h.HasPoints)
	assert.Equal(t, outcome.Banker, h.Outcome)
	assert.EqualValues(t, 3, h.Player)
	assert.EqualValues(t, 7, h.Banker)
}

func TestParse_Rejects(t *testing.T) {
	for _, text := range []string{"", "   ", "hello", "8", "845", "莊x閒"} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, outcome.ErrInvalidInput, text)
	}
}
