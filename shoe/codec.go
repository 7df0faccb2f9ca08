package shoe

import (
	"fmt"
	"time"

	"baccarat-lite/outcome"

	"google.golang.org/protobuf/encoding/protowire"
)

// CodecVersion is written as field 1 of every blob.
const CodecVersion = 1

// Shoe message layout.
const (
	fieldVersion   protowire.Number = 1
	fieldID        protowire.Number = 2
	fieldOwner     protowire.Number = 3
	fieldSource    protowire.Number = 4
	fieldHand      protowire.Number = 5 // repeated Hand
	fieldStartedAt protowire.Number = 6 // unix millis, zigzag
	fieldEndedAt   protowire.Number = 7
	fieldTally     protowire.Number = 8
)

// Hand message layout.
const (
	handOutcome   protowire.Number = 1
	handHasPoints protowire.Number = 2
	handPlayer    protowire.Number = 3
	handBanker    protowire.Number = 4
)

// Tally message layout.
const (
	tallyHits   protowire.Number = 1
	tallyMisses protowire.Number = 2
	tallyStreak protowire.Number = 3 // zigzag
)

// Encode serializes a shoe in protobuf wire format.
func Encode(s *Shoe) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, 0, 64+8*len(s.Hands))
	b = appendVarint(b, fieldVersion, CodecVersion)
	b = appendString(b, fieldID, s.ID)
	b = appendString(b, fieldOwner, s.Owner)
	b = appendString(b, fieldSource, string(s.Source))
	for _, h := range s.Hands {
		b = protowire.AppendTag(b, fieldHand, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeHand(h))
	}
	b = appendTime(b, fieldStartedAt, s.StartedAt)
	b = appendTime(b, fieldEndedAt, s.EndedAt)
	if s.Tally != (Tally{}) {
		b = protowire.AppendTag(b, fieldTally, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeTally(s.Tally))
	}
	return b, nil
}

// Decode parses a blob produced by Encode. Unknown fields are skipped.
func Decode(b []byte) (*Shoe, error) {
	s := &Shoe{}
	var version uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, corrupt("tag", n)
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(b)
		case num == fieldID && typ == protowire.BytesType:
			s.ID, n = consumeString(b)
		case num == fieldOwner && typ == protowire.BytesType:
			s.Owner, n = consumeString(b)
		case num == fieldSource && typ == protowire.BytesType:
			var src string
			src, n = consumeString(b)
			s.Source = Source(src)
		case num == fieldHand && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				h, err := decodeHand(raw)
				if err != nil {
					return nil, err
				}
				s.Hands = append(s.Hands, h)
			}
		case (num == fieldStartedAt || num == fieldEndedAt) && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			t := time.UnixMilli(protowire.DecodeZigZag(v)).UTC()
			if num == fieldStartedAt {
				s.StartedAt = t
			} else {
				s.EndedAt = t
			}
		case num == fieldTally && typ == protowire.BytesType:
			var raw []byte
			raw, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				t, err := decodeTally(raw)
				if err != nil {
					return nil, err
				}
				s.Tally = t
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, corrupt(fmt.Sprintf("field %d", num), n)
		}
		b = b[n:]
	}
	if version != CodecVersion {
		return nil, &ShoeError{Reason: "version", Message: fmt.Sprintf("unsupported codec version %d", version), Err: ErrCorrupt}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func encodeHand(h outcome.Hand) []byte {
	b := appendVarint(nil, handOutcome, uint64(h.Outcome))
	if h.HasPoints {
		b = appendVarint(b, handHasPoints, 1)
		b = appendVarint(b, handPlayer, uint64(h.Player))
		b = appendVarint(b, handBanker, uint64(h.Banker))
	}
	return b
}

func decodeHand(b []byte) (outcome.Hand, error) {
	var h outcome.Hand
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return h, corrupt("hand tag", n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return h, corrupt("hand field", n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return h, corrupt("hand value", n)
		}
		b = b[n:]
		switch num {
		case handOutcome:
			h.Outcome = outcome.Outcome(v)
		case handHasPoints:
			h.HasPoints = v != 0
		case handPlayer:
			h.Player = uint8(v)
		case handBanker:
			h.Banker = uint8(v)
		}
	}
	if h.HasPoints && (h.Player > 9 || h.Banker > 9) {
		return h, &ShoeError{Reason: "decode", Message: "hand points out of range", Err: ErrCorrupt}
	}
	return h, nil
}

func encodeTally(t Tally) []byte {
	b := appendVarint(nil, tallyHits, uint64(t.Hits))
	b = appendVarint(b, tallyMisses, uint64(t.Misses))
	return appendVarint(b, tallyStreak, protowire.EncodeZigZag(int64(t.Streak)))
}

func decodeTally(b []byte) (Tally, error) {
	var t Tally
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return t, corrupt("tally tag", n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return t, corrupt("tally field", n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return t, corrupt("tally value", n)
		}
		b = b[n:]
		switch num {
		case tallyHits:
			t.Hits = int(v)
		case tallyMisses:
			t.Misses = int(v)
		case tallyStreak:
			t.Streak = int(protowire.DecodeZigZag(v))
		}
	}
	return t, nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	return appendVarint(b, num, protowire.EncodeZigZag(t.UnixMilli()))
}

func consumeString(b []byte) (string, int) {
	v, n := protowire.ConsumeBytes(b)
	return string(v), n
}

func corrupt(where string, n int) error {
	return &ShoeError{Reason: "decode", Message: where + ": " + protowire.ParseError(n).Error(), Err: ErrCorrupt}
}
