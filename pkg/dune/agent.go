package dune

import "context"

// RequestKind is the closed set of questions the phase engine can put to
// an agent (§5 external interfaces).
type RequestKind string

const (
	RequestStormDial       RequestKind = "storm_dial"
	RequestSpiceBlowChoice RequestKind = "spice_blow_choice" // Fremen worm-ride
	RequestBid             RequestKind = "bid"
	RequestShipment        RequestKind = "shipment"
	RequestMovement        RequestKind = "movement"
	RequestBattlePlan      RequestKind = "battle_plan"
	RequestTraitorCall     RequestKind = "traitor_call"
	RequestRevival         RequestKind = "revival"
	RequestKaramaInterrupt RequestKind = "karama_interrupt"
	RequestDealResponse    RequestKind = "deal_response"
	RequestVoice           RequestKind = "voice"
	RequestPrescience      RequestKind = "prescience"
)

// AgentRequest is one question the engine asks a single faction's agent.
// Data carries request-specific fields (e.g. which card is up for bid);
// it is intentionally untyped at this boundary, the same way the
// teacher's subprocess protocol passes a flat key/value line.
type AgentRequest struct {
	Kind     RequestKind
	Faction  Faction
	Snapshot Snapshot
	Data     map[string]any
}

// AgentResponse is one agent's answer. Exactly one of the typed fields is
// meaningful, selected by the originating request's Kind.
type AgentResponse struct {
	Faction Faction

	// Missing is set by the orchestrator (never by a well-behaved agent)
	// when no response arrived before the phase deadline; it drives
	// forced-default recovery (§4.E.10) rather than a RuleError.
	Missing bool

	Int    int
	Bool   bool
	String string
	Data   map[string]any
}

// AgentProvider is the external interface boundary every agent (human
// client, scripted test agent, or out-of-process agent reached over the
// HTTP API) implements. Answer must not mutate the Snapshot it is
// given; it returns a single response to a single request.
type AgentProvider interface {
	Answer(ctx context.Context, req AgentRequest) (AgentResponse, error)
}

// PhaseStepResult is the closed two-value result of advancing a phase by
// one step (§4.E.9): either the phase produced events and is not yet
// finished, or it completed and the engine should advance to the next
// phase.
type PhaseStepResult struct {
	Complete bool
	Snapshot Snapshot
	Events   []Event
}
