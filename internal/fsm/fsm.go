package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle                 State = "idle"
	StateAwaitingConfirmation State = "awaiting_confirmation"
)

const (
	EventSuggest Event = "suggest"
	EventConfirm Event = "confirm"
	EventDiscard Event = "discard"
)

// Transition moves the pending-suggestion slot between states. A new
// suggestion while one is pending replaces it and stays awaiting.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventSuggest:
			return StateAwaitingConfirmation, nil
		case EventDiscard:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateAwaitingConfirmation:
		switch event {
		case EventSuggest:
			return StateAwaitingConfirmation, nil
		case EventConfirm, EventDiscard:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
