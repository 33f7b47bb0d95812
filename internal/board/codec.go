package board

import (
	"errors"

	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/transaction"
)

// EncodedMessage is what a Codec produces for one outbound intent: the
// wire frame plus the response descriptor the Transaction Engine's matcher
// needs (peer address, expected action code, correlating id).
type EncodedMessage struct {
	Frame          []byte
	ExpectedPeer   byte
	ExpectedAction byte
	CorrelatingID  int
}

// Codec binds a controller variant's actual wire encoding to the generic
// Board facade. Each variant subpackage (intellicenter, intellitouch,
// easytouch, suntouch, intellicom, aqualink, standalone) supplies one.
// Methods return (nil, ErrUnsupportedIntent) when the variant's wire
// protocol has no representation for that intent; the Board converts it
// into the same bridgeerr.InvalidOperationError a capability-matrix
// rejection produces (see Board.wrapCodecErr).
type Codec interface {
	EncodeSetCircuitState(circuitID int, on bool) (*EncodedMessage, error)
	EncodeSetCircuitGroupState(groupID int, on bool) (*EncodedMessage, error)
	EncodeSetLightTheme(groupID int, theme string) (*EncodedMessage, error)
	EncodeSetBodyHeatMode(bodyID int, mode string) (*EncodedMessage, error)
	EncodeSetHeatSetpoint(bodyID int, tempF float64) (*EncodedMessage, error)
	EncodeSetCoolSetpoint(bodyID int, tempF float64) (*EncodedMessage, error)
	EncodeSetPumpSpeed(pumpID int, target PumpTarget) (*EncodedMessage, error)
	EncodeSetChlorinator(id int, sp ChlorinatorSetpoints) (*EncodedMessage, error)
	EncodeSetChemSetpoint(id int, chem ChemKind, value float64) (*EncodedMessage, error)
	EncodeSetClock(payload ClockPayload) (*EncodedMessage, error)
	EncodeRequestConfiguration(scope string) (*EncodedMessage, error)
	EncodeRequestStatus(scope string) (*EncodedMessage, error)

	// DecodeStatus implements spec §4.5's "one routine per action code
	// consuming an inbound frame and producing idempotent patches to the
	// equipment/state model." It is called for every inbound frame the
	// Transaction Engine's matcher could not correlate to an in-flight
	// transaction (transaction.Spontaneous). It returns nil when the frame's
	// action code carries no status this variant understands.
	DecodeStatus(f *transaction.Frame) changeengine.Mutation
}

// ErrUnsupportedIntent is returned by a Codec method for an intent its
// wire protocol has no message for.
type unsupportedIntentError struct{ intent string }

func (e *unsupportedIntentError) Error() string { return "unsupported intent: " + e.intent }

func ErrUnsupportedIntent(intent IntentKind) error {
	return &unsupportedIntentError{intent: string(intent)}
}

// unsupportedIntentFrom reports the IntentKind carried by err if it (or
// something it wraps) is the ErrUnsupportedIntent sentinel.
func unsupportedIntentFrom(err error) (IntentKind, bool) {
	var u *unsupportedIntentError
	if errors.As(err, &u) {
		return IntentKind(u.intent), true
	}
	return "", false
}
