package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Each counter-increment site in reader.go/deliver.go/writer.go wraps its
// logged error with one of these sentinels via fmt.Errorf("%w: %v", ...);
// this pins that every sentinel actually satisfies errors.Is once wrapped
// the same way, the contract SPEC_FULL.md §3 commits to.
func TestSentinelErrorsSatisfyErrorsIs(t *testing.T) {
	inner := errors.New("some underlying cause")
	for _, sentinel := range []error{
		ErrPortOpen,
		ErrPortIO,
		ErrFrameOverflow,
		ErrInvalidCobs,
		ErrRingFull,
		ErrConsumerRejected,
		ErrAllocation,
	} {
		wrapped := fmt.Errorf("%w: %v", sentinel, inner)
		assert.True(t, errors.Is(wrapped, sentinel), "expected errors.Is to hold for %v", sentinel)
	}
}
