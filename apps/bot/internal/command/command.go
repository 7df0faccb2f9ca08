// Package command turns a chat message into a bot command.
package command

import (
	"strings"
	"unicode"

	"baccarat-lite/outcome"
)

// Kind 指令类型
type Kind int

const (
	KindRecord Kind = iota + 1 // one hand: symbol or point pair
	KindSeed                   // 2-3 symbols: start a new shoe with them
	KindImport                 // 4+ symbols: archive a whole past shoe
	KindEnd                    // 結束
	KindReset                  // 重置
	KindRoad                   // 路
	KindHelp
)

var kindNames = map[Kind]string{
	KindRecord: "record",
	KindSeed:   "seed",
	KindImport: "import",
	KindEnd:    "end",
	KindReset:  "reset",
	KindRoad:   "road",
	KindHelp:   "help",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Seeds longer than this are treated as an import.
const MaxSeedHands = 3

type Command struct {
	Kind  Kind
	Hands []outcome.Hand
}

var keywords = map[string]Kind{
	"結束": KindEnd, "结束": KindEnd, "end": KindEnd, "/end": KindEnd,
	"重置": KindReset, "reset": KindReset, "/reset": KindReset,
	"路": KindRoad, "road": KindRoad, "/road": KindRoad,
	"說明": KindHelp, "说明": KindHelp, "help": KindHelp, "/help": KindHelp, "/start": KindHelp,
}

// Parse classifies text. Unrecognized input returns an error matching
// outcome.ErrInvalidInput.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if k, ok := keywords[strings.ToLower(trimmed)]; ok {
		return Command{Kind: k}, nil
	}
	if trimmed == "" {
		return Command{}, &outcome.InvalidInputError{Input: text, Reason: "empty message"}
	}

	// A single token: point pair or one symbol word ("banker", "莊").
	if h, err := outcome.Normalize(trimmed); err == nil {
		return Command{Kind: KindRecord, Hands: []outcome.Hand{h}}, nil
	}

	run := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' || r == '，' || r == '-' {
			return -1
		}
		return r
	}, trimmed)
	seq, err := outcome.ParseRun(run)
	if err != nil {
		return Command{}, err
	}
	hands := outcome.Hands(seq...)
	switch {
	case len(seq) == 1:
		return Command{Kind: KindRecord, Hands: hands}, nil
	case len(seq) <= MaxSeedHands:
		return Command{Kind: KindSeed, Hands: hands}, nil
	}
	return Command{Kind: KindImport, Hands: hands}, nil
}
