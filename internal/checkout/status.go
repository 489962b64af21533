package checkout

type State string

const (
	StateDraft           State = "DRAFT"
	StateValidating      State = "VALIDATING"
	StateSubmitting      State = "SUBMITTING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateConfirmed       State = "CONFIRMED"
	StateCompleted       State = "COMPLETED"
)

var validNext = map[State]map[State]bool{
	StateDraft:           {StateValidating: true},
	StateValidating:      {StateSubmitting: true, StateDraft: true},
	StateSubmitting:      {StateAwaitingPayment: true, StateConfirmed: true},
	StateAwaitingPayment: {StateCompleted: true},
	StateConfirmed:       {StateCompleted: true},
	StateCompleted:       {StateDraft: true}, // a finished checkout can start over
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}

func (s State) IsTerminal() bool {
	return s == StateCompleted
}

func (s State) String() string { return string(s) }
