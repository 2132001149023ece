package ports

import "github.com/tdex-network/tdex-backup/internal/core/domain"

// FlowKind identifies the child flows of a backup.
type FlowKind int

const (
	FlowKindSeedPhrase FlowKind = iota
	FlowKindPasswordEntry
	FlowKindSecurityElevation
)

func (k FlowKind) String() string {
	switch k {
	case FlowKindSeedPhrase:
		return "SeedPhrase"
	case FlowKindPasswordEntry:
		return "PasswordEntry"
	case FlowKindSecurityElevation:
		return "SecurityElevation"
	default:
		return "Unknown"
	}
}

// FlowEventKind is the outcome reported by a child flow.
type FlowEventKind int

const (
	SeedPhraseVerified FlowEventKind = iota
	SeedPhraseCancelled
	PasswordEntered
	PasswordCancelled
	SecurityLocked
	SecurityDeclined
)

func (k FlowEventKind) String() string {
	switch k {
	case SeedPhraseVerified:
		return "SeedPhraseVerified"
	case SeedPhraseCancelled:
		return "SeedPhraseCancelled"
	case PasswordEntered:
		return "PasswordEntered"
	case PasswordCancelled:
		return "PasswordCancelled"
	case SecurityLocked:
		return "SecurityLocked"
	case SecurityDeclined:
		return "SecurityDeclined"
	default:
		return "Unknown"
	}
}

// FlowEvent is the single type used by every child flow to report its
// outcome. Password is set only for PasswordEntered.
type FlowEvent struct {
	Kind     FlowEventKind
	Password string
}

// Source returns the kind of flow that is expected to emit the event.
func (e FlowEvent) Source() FlowKind {
	switch e.Kind {
	case SeedPhraseVerified, SeedPhraseCancelled:
		return FlowKindSeedPhrase
	case PasswordEntered, PasswordCancelled:
		return FlowKindPasswordEntry
	default:
		return FlowKindSecurityElevation
	}
}

// IsCancel returns whether the event aborts the primary flow.
func (e FlowEvent) IsCancel() bool {
	return e.Kind == SeedPhraseCancelled || e.Kind == PasswordCancelled
}

// FlowEventSink receives the outcomes of the child flows. Notify must never
// block the caller.
type FlowEventSink interface {
	Notify(event FlowEvent)
}

// ChildFlow is a self-contained sub-flow of a backup. Start must return
// without waiting for the user, the outcome is reported to the sink given at
// creation. End tells the flow to tear down its own nested presentation once
// the backup is over, Dismiss aborts it.
type ChildFlow interface {
	Kind() FlowKind
	Start()
	End()
	Dismiss()
}

// FlowFactory creates the child flows of a backup.
type FlowFactory interface {
	NewSeedPhraseFlow(address string, sink FlowEventSink) ChildFlow
	NewPasswordEntryFlow(address string, sink FlowEventSink) ChildFlow
	NewSecurityElevationFlow(wallet domain.Wallet, sink FlowEventSink) ChildFlow
}
