package order

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCooking   Status = "cooking"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCooking, StatusCancelled},
	StatusCooking: {StatusReady},
	StatusReady:   {StatusCompleted},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPaid, StatusCooking, StatusReady, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Reached reports whether an order in s has already been through target on
// the forward path. Cancelled is only reached by itself.
func (s Status) Reached(target Status) bool {
	if s == target {
		return true
	}
	if s == StatusCancelled || target == StatusCancelled {
		return false
	}
	return rank(s) >= rank(target)
}

func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusPaid:
		return 1
	case StatusCooking:
		return 2
	case StatusReady:
		return 3
	case StatusCompleted:
		return 4
	}
	return -1
}

// CanTransition reports whether from -> to is a legal single step.
// Staying in the same state is not a transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
