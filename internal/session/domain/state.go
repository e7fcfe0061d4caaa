package domain

import "fmt"

type State string

const (
	StateAnonymous      State = "ANONYMOUS"
	StateAuthenticating State = "AUTHENTICATING"
	StateResolved       State = "RESOLVED"
	StateUnresolved     State = "UNRESOLVED"
)

// AUTHENTICATING falls back to where it started when the credential
// exchange itself fails; every other edge is listed here.
var transitions = map[State][]State{
	StateAnonymous:      {StateAuthenticating},
	StateAuthenticating: {StateResolved, StateUnresolved, StateAnonymous},
	StateResolved:       {StateAnonymous},
	StateUnresolved:     {StateAuthenticating, StateAnonymous},
}

func (s State) CanTransition(to State) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to.
func Transition(from, to State) error {
	if from == "" {
		from = StateAnonymous
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
