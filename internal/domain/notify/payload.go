package notify

import "time"

// SourceKind distinguishes what approved a firing: a conditional rule or a
// fixed daily slot.
type SourceKind string

const (
	SourceRule SourceKind = "RULE"
	SourceSlot SourceKind = "SLOT"
)

// Firing is the output of an evaluation pass: a rule or slot that has been
// cleared to send a notification this pass. It carries just enough for the
// dispatcher to build the payload.
type Firing struct {
	Kind     SourceKind
	SourceID string
	Category string
	Priority int
}

// Payload is the ready-to-display notification handed to the Sink. It is
// ephemeral: the engine never persists it.
type Payload struct {
	ID       string // unique per dispatch attempt, for sink-side dedup/tracing
	Kind     SourceKind
	SourceID string
	Title    string
	Body     string
	Category string
	Priority int
}

// Sink is the delivery subsystem (push / local notifications), treated as
// a black box. Implementations decide transport, retries and timeouts; the
// engine only cares whether a send succeeded, because firing state is
// recorded after success only.
type Sink interface {
	// SendNow attempts immediate delivery.
	SendNow(payload Payload) error
	// ScheduleAt requests delivery at a future instant. Optional
	// optimisation for slots; the engine's own tick loop stays correct
	// even when an implementation returns an error here.
	ScheduleAt(at time.Time, payload Payload) error
}
