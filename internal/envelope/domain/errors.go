package domain

import (
	"github.com/allisson/citadel/internal/errors"
)

// Envelope-path error sentinels.
//
// ErrOpenFailed is deliberately the single value every decrypt-path failure
// resolves to once wrapped — short input, bad header, decapsulation failure,
// tag failure, wrong AAD, wrong context, wrong key all collapse to the same
// opaque error. Callers must never be able to distinguish among these by
// inspecting the returned error's Error() string.
var (
	// ErrOpenFailed is the single opaque error returned by Open for every
	// possible decrypt-path failure. Its Error() string is fixed and never varies.
	ErrOpenFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrSealFailed covers encoding/RNG/encapsulation failures on the seal path.
	// Unlike ErrOpenFailed this is not required to be oracle-resistant: seal
	// failures happen before any secret-dependent comparison.
	ErrSealFailed = errors.Wrap(errors.ErrInvalidInput, "encryption failed")

	// ErrAADTooLarge indicates a TLV value in an AAD builder exceeded 65535 bytes.
	ErrAADTooLarge = errors.Wrap(errors.ErrInvalidInput, "aad field exceeds maximum length")
)
