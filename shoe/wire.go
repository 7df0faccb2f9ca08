package shoe

import (
	"encoding/base64"
	"time"

	"baccarat-lite/outcome"
)

// WireShoe is the JSON shape served to the admin API and the board viewer.
type WireShoe struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Source    Source    `json:"source"`
	Outcomes  string    `json:"outcomes"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Summary   Summary   `json:"summary"`
	BlobB64   string    `json:"blobB64,omitempty"`
}

func ToWireShoe(s *Shoe, withBlob bool) (*WireShoe, error) {
	if s == nil {
		return nil, nil
	}
	out := &WireShoe{
		ID:        s.ID,
		Owner:     s.Owner,
		Source:    s.Source,
		Outcomes:  outcome.Letters(s.Outcomes()),
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		Summary:   s.Summary(),
	}
	if withBlob {
		b64, err := EncodeBase64(s)
		if err != nil {
			return nil, err
		}
		out.BlobB64 = b64
	}
	return out, nil
}

func EncodeBase64(s *Shoe) (string, error) {
	b, err := Encode(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeBase64(raw string) (*Shoe, error) {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &ShoeError{Reason: "base64", Message: err.Error(), Err: ErrCorrupt}
	}
	return Decode(b)
}
