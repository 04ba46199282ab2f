package services

import "errors"

var (
	// ErrRateLimited means the live market data source refused the call
	// because of its request quota.
	ErrRateLimited = errors.New("market data rate limit reached")
	// ErrUnsupported means the live source has no endpoint for the data kind.
	ErrUnsupported = errors.New("not supported by market data source")
	// ErrNotFound means the live source returned no data for the ticker.
	ErrNotFound = errors.New("no market data found")
	// ErrQuotaExceeded means the generative AI provider quota is exhausted.
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrBenchmarkUnavailable means the benchmark price series could not be
	// loaded. It is never replaced with simulated data.
	ErrBenchmarkUnavailable = errors.New("benchmark data unavailable")
	// ErrNotEnoughData means the performance series has no valid point.
	ErrNotEnoughData = errors.New("not enough data")
	// ErrStaleResult means the ledger changed while a result was computed.
	ErrStaleResult = errors.New("result is stale")
)
