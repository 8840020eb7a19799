package statemachine

import (
	"fmt"
	"strings"

	"shawarma-sheesh-api/models"
)

// Actor is who requests a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorStaff    Actor = "staff"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// validTransitions is the authoritative order lifecycle
var validTransitions = []Transition{
	{From: models.StatusProcessing, To: models.StatusConfirmed, Actor: ActorStaff},
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorStaff},
	// Customers can only back out before the kitchen accepts the order
	{From: models.StatusProcessing, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusShipped, Actor: ActorStaff},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorStaff},
	{From: models.StatusShipped, To: models.StatusDelivered, Actor: ActorStaff},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for %s; valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

// IsKnown reports whether s is one of the defined order statuses.
func IsKnown(s models.OrderStatus) bool {
	switch s {
	case models.StatusProcessing, models.StatusConfirmed, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func IsTerminal(s models.OrderStatus) bool {
	return len(ValidTransitionsFrom(s)) == 0
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
