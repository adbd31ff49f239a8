package xmss

import "errors"

// Sentinel errors returned by GeneralizedXMSS. Verify never returns an
// error - an invalid signature simply yields false - these are returned only
// by Sign. KeyGen panics on invalid arguments, and InternalConsistencyCheck
// reports its findings with its own error values.
var (
	// ErrInvalidMessageLength is returned when Sign is called with a message
	// whose length does not equal th.MessageLength.
	ErrInvalidMessageLength = errors.New("xmss: message must be exactly th.MessageLength bytes")

	// ErrEpochNotActive is returned when Sign is called for an epoch outside
	// the secret key's [ActivationEpoch, ActivationEpoch+NumActiveEpochs) window.
	ErrEpochNotActive = errors.New("xmss: epoch outside the secret key's active range")

	// ErrUnluckyFailure is returned when an encoding scheme that may need
	// retries (e.g. Target-Sum) fails to find a valid codeword within
	// MaxTries attempts.
	ErrUnluckyFailure = errors.New("xmss: encoding did not converge within the configured retry budget")
)
