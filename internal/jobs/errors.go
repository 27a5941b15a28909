package jobs

import "github.com/pkg/errors"

var (
	// ErrJobNotFound covers both a missing job and an ownership mismatch;
	// callers must not be able to tell the two apart.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotAvailable is the expected outcome of losing a claim race.
	ErrJobNotAvailable = errors.New("job not available for claiming")

	ErrStoreUnavailable = errors.New("job store unavailable")
)
