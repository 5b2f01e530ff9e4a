package gcif

import "errors"

// Errors returned by the codec. The CLI maps these to the numeric
// exit-code taxonomy via ExitCode.
var (
	ErrBadDims       = errors.New("gcif: bad image dimensions")
	ErrBadParams     = errors.New("gcif: bad encoder parameters")
	ErrReadFail      = errors.New("gcif: read failed")
	ErrWriteFail     = errors.New("gcif: write failed")
	ErrBadFormat     = errors.New("gcif: bad magic or header hash")
	ErrDataCorrupt   = errors.New("gcif: data hash mismatch")
	ErrInternalState = errors.New("gcif: internal state violation")
)

// ExitCode maps an error to the CLI exit-code taxonomy: 0 for success,
// stable non-zero codes per error kind, 8 for anything unrecognized.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBadDims):
		return 1
	case errors.Is(err, ErrBadParams):
		return 2
	case errors.Is(err, ErrReadFail):
		return 3
	case errors.Is(err, ErrWriteFail):
		return 4
	case errors.Is(err, ErrBadFormat):
		return 5
	case errors.Is(err, ErrDataCorrupt):
		return 6
	case errors.Is(err, ErrInternalState):
		return 7
	default:
		return 8
	}
}
