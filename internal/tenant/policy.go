package tenant

// Step identifies which rung of the fallback chain produced a decision.
// The chain is ordered most-authoritative-first; StepLastResort exists to
// avoid hard-locking accounts during data migrations and must be audited
// whenever it fires.
type Step int

const (
	StepNone         Step = iota // nothing resolvable anywhere
	StepPointer                  // profile pointer resolved to a real garage
	StepOwned                    // first garage from ownership records
	StepMember                   // first garage from explicit membership rows
	StepNamedDefault             // garage carrying the configured default slug
	StepLastResort               // any garage in the system
)

func (s Step) String() string {
	switch s {
	case StepPointer:
		return "pointer"
	case StepOwned:
		return "owned"
	case StepMember:
		return "member"
	case StepNamedDefault:
		return "named_default"
	case StepLastResort:
		return "last_resort"
	}
	return "none"
}

// Signals carries the pre-fetched, pre-validated inputs the policy decides
// over. The reconciler gathers these; keeping the decision itself pure makes
// the ordering directly testable.
type Signals struct {
	Pointer      *uint64  // profile pointer, nil when unset
	PointerValid bool     // true when the pointer references an existing garage
	Owned        []uint64 // garages the user owns, id order
	Member       []uint64 // garages the user has membership rows for, id order
	NamedDefault uint64   // garage with the configured default slug, 0 when absent
	Any          uint64   // an arbitrary existing garage, 0 when the system has none
	LastResort   bool     // whether the final fallback step is enabled
}

// Decision is the outcome of the fallback chain.
type Decision struct {
	GarageID uint64
	Step     Step
}

// Choose applies the fallback chain in strict order until a step yields a
// garage: pointer -> first owned -> first member -> named default -> any
// garage (when enabled). A dangling pointer is skipped, never trusted.
func Choose(s Signals) Decision {
	if s.Pointer != nil && s.PointerValid {
		return Decision{GarageID: *s.Pointer, Step: StepPointer}
	}
	if len(s.Owned) > 0 {
		return Decision{GarageID: s.Owned[0], Step: StepOwned}
	}
	if len(s.Member) > 0 {
		return Decision{GarageID: s.Member[0], Step: StepMember}
	}
	if s.NamedDefault != 0 {
		return Decision{GarageID: s.NamedDefault, Step: StepNamedDefault}
	}
	if s.LastResort && s.Any != 0 {
		return Decision{GarageID: s.Any, Step: StepLastResort}
	}
	return Decision{Step: StepNone}
}
