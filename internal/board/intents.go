package board

import "time"

// CircuitAction is the requested transition for setCircuitState.
type CircuitAction string

const (
	ActionOn     CircuitAction = "on"
	ActionOff    CircuitAction = "off"
	ActionToggle CircuitAction = "toggle"
)

// PumpTarget carries whichever of rpm/flow/speed a pump variant accepts.
type PumpTarget struct {
	RPM   *int
	Flow  *int
	Speed *int
}

// ChlorinatorSetpoints is the payload for setChlorinator.
type ChlorinatorSetpoints struct {
	PoolSetpoint    int
	SpaSetpoint     int
	SuperChlor      bool
	SuperChlorHours int
}

// ChemKind names which chemistry setpoint setChemSetpoint targets.
type ChemKind string

const (
	ChemPH  ChemKind = "ph"
	ChemORP ChemKind = "orp"
)

// IntentKind names one of the §4.5 intents, used to key codec lookups and
// InvalidOperation errors.
type IntentKind string

const (
	IntentSetCircuitState      IntentKind = "setCircuitState"
	IntentSetCircuitGroupState IntentKind = "setCircuitGroupState"
	IntentSetLightTheme        IntentKind = "setLightTheme"
	IntentSetBodyHeatMode      IntentKind = "setBodyHeatMode"
	IntentSetHeatSetpoint      IntentKind = "setHeatSetpoint"
	IntentSetCoolSetpoint      IntentKind = "setCoolSetpoint"
	IntentSetPumpSpeed         IntentKind = "setPumpSpeed"
	IntentSetChlorinator       IntentKind = "setChlorinator"
	IntentSetChemSetpoint      IntentKind = "setChemSetpoint"
	IntentSetClock             IntentKind = "setClock"
	IntentRequestConfiguration IntentKind = "requestConfiguration"
	IntentRequestStatus        IntentKind = "requestStatus"
)

// ClockPayload is the argument to setClock.
type ClockPayload struct {
	At time.Time
}
