package backtest

import "errors"

// Engine errors
var (
	ErrNotImplementedInStrategy = errors.New("strategy does not supply signals")
	ErrMisalignedSeries         = errors.New("misaligned series")
	ErrInvalidState             = errors.New("invalid engine state")
	ErrInsufficientData         = errors.New("at least two price observations are required")
	ErrInvalidPrice             = errors.New("prices must be finite")
	ErrInvalidSignal            = errors.New("signals must be finite or NaN")
)
