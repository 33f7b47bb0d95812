// Package bridgeerr defines the closed error taxonomy the core returns to
// its callers. Every intent, transport, and persistence failure surfaces as
// one of these types so collaborators (REST layers, schedulers, tests) can
// switch on kind without parsing strings.
package bridgeerr

import "fmt"

// EquipmentNotFoundError is returned when an intent references an unknown
// configuration item.
type EquipmentNotFoundError struct {
	Kind string
	ID   int
}

func (e *EquipmentNotFoundError) Error() string {
	return fmt.Sprintf("equipment not found: %s id=%d", e.Kind, e.ID)
}

// InvalidEquipmentDataError is returned when an intent's input fails a
// range, enum, or shape check before a frame is ever queued.
type InvalidEquipmentDataError struct {
	Kind   string
	ID     int
	Field  string
	Reason string
}

func (e *InvalidEquipmentDataError) Error() string {
	return fmt.Sprintf("invalid equipment data: %s id=%d field=%s: %s", e.Kind, e.ID, e.Field, e.Reason)
}

// InvalidOperationError is returned when the bound controller variant lacks
// the capability the intent requires.
type InvalidOperationError struct {
	ControllerType string
	Intent         string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation: %s not supported on %s", e.Intent, e.ControllerType)
}

// InterlockViolationError is returned when the Delay Manager refuses an
// operation because of an active interlock.
type InterlockViolationError struct {
	ConflictingKey string
}

func (e *InterlockViolationError) Error() string {
	return fmt.Sprintf("interlock violation: %s", e.ConflictingKey)
}

// PortUnavailableError is returned when a port's underlying transport
// rejects open.
type PortUnavailableError struct {
	PortID int
	Cause  error
}

func (e *PortUnavailableError) Error() string {
	return fmt.Sprintf("port %d unavailable: %v", e.PortID, e.Cause)
}

func (e *PortUnavailableError) Unwrap() error { return e.Cause }

// PortClosedError is returned when a port is lost mid-operation.
type PortClosedError struct {
	PortID int
}

func (e *PortClosedError) Error() string {
	return fmt.Sprintf("port %d closed", e.PortID)
}

// WriteRejectedError is returned when a write exceeds the backpressure
// bound of a port.
type WriteRejectedError struct {
	PortID int
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("port %d write rejected: backpressure bound exceeded", e.PortID)
}

// ProtocolError is returned when framing or checksum validation is
// exhausted beyond the error-rate threshold.
type ProtocolError struct {
	PortID int
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("port %d protocol error: %s", e.PortID, e.Detail)
}

// NoResponseError is returned when a transaction's retry budget is
// exhausted without a matching response.
type NoResponseError struct {
	PortID        int
	MsgDescriptor string
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("port %d: no response for %s", e.PortID, e.MsgDescriptor)
}

// CancelledError is returned when an intent is aborted by its caller or by
// shutdown.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "cancelled" }

// PersistenceError is returned when an atomic write to a persisted file
// fails.
type PersistenceError struct {
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error writing %s: %v", e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// ConfigurationCorruptError is returned (and then auto-recovered) when a
// persisted JSON file fails to parse on load.
type ConfigurationCorruptError struct {
	Path string
}

func (e *ConfigurationCorruptError) Error() string {
	return fmt.Sprintf("configuration corrupt: %s", e.Path)
}

// InternalError wraps a broken invariant. Reserved for assertions that
// should never fire in correct code.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }
