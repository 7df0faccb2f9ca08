package shoe

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyShoe = errors.New("shoe has no hands")
	ErrCorrupt   = errors.New("shoe blob is corrupt")
)

// ShoeError carries the failing field or stage of a codec or validation step.
type ShoeError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ShoeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("shoe error(reason=%s): %s", e.Reason, e.Message)
}

func (e *ShoeError) Unwrap() error { return e.Err }
