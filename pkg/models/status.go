package models

import "strings"

type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCanceled  OrderStatus = "canceled"
)

// position along the forward path; canceled sits outside it
var statusRank = map[OrderStatus]int{
	StatusNew:       0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusCompleted: 4,
}

// older clients still send the five-state vocabulary
var legacyStatus = map[string]OrderStatus{
	"pending":   StatusNew,
	"contacted": StatusConfirmed,
	"closed":    StatusCompleted,
	"cancelled": StatusCanceled,
}

// ParseOrderStatus maps a client string onto the canonical vocabulary.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st, ok := legacyStatus[s]; ok {
		return st, true
	}
	st := OrderStatus(s)
	if st == StatusCanceled {
		return st, true
	}
	if _, ok := statusRank[st]; ok {
		return st, true
	}
	return "", false
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCanceled
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo reports whether next is a legal move from s. Forward
// skips are allowed, backward moves and moves out of a terminal state are
// not. Staying in place is not a transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next || s.Terminal() {
		return false
	}
	if next == StatusCanceled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// OrderStatuses lists the canonical vocabulary in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusNew, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCanceled}
}
