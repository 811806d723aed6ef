package brackets

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrInvalidCompetitors = errors.New("invalid competitor list")
	ErrCorruptState       = errors.New("bracket state is inconsistent")

	// ErrInvalidResult is the parent of every rejected result or match edit.
	ErrInvalidResult = errors.New("invalid match result")

	ErrScoreOutOfRange   = fmt.Errorf("%w: score out of range", ErrInvalidResult)
	ErrBothAtThreshold   = fmt.Errorf("%w: both players cannot reach the win threshold", ErrInvalidResult)
	ErrUnknownWinner     = fmt.Errorf("%w: winner is not seated in this match", ErrInvalidResult)
	ErrByeMatch          = fmt.Errorf("%w: bye matches cannot be edited", ErrInvalidResult)
	ErrResultLocked      = fmt.Errorf("%w: result has already been advanced", ErrInvalidResult)
	ErrInvalidTransition = fmt.Errorf("%w: status change not allowed", ErrInvalidResult)
	ErrInvalidBestOf     = fmt.Errorf("%w: best-of must be a positive odd number", ErrInvalidResult)
	ErrMatchStarted      = fmt.Errorf("%w: match has already started", ErrInvalidResult)
)
