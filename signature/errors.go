package signature

import "errors"

// ErrSignatureShape is returned when a signature declaration is invalid:
// mixed named/unnamed parameters, zero viable constructors, or an
// ambiguous builder-mode selection. It is constructed eagerly, when the
// signature is built, not when it is later used.
var ErrSignatureShape = errors.New("signature: invalid shape")

// ErrUnsupportedPrebuilt is returned by Build when called with a non-nil
// prebuilt value on a signature that cannot accept one (constructor
// signatures, fixed-size array signatures).
var ErrUnsupportedPrebuilt = errors.New("signature: prebuilt not supported")

// ErrUnsupportedMapKey is returned when a map signature's key type is
// neither string nor an encoding.TextUnmarshaler/TextMarshaler.
var ErrUnsupportedMapKey = errors.New("signature: unsupported map key type")
