package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPlaced, OrderStatusAccepted},
		{OrderStatusPlaced, OrderStatusCancelled},
		{OrderStatusAccepted, OrderStatusPacked},
		{OrderStatusAccepted, OrderStatusCancelled},
		{OrderStatusPacked, OrderStatusOutForDelivery},
		{OrderStatusPacked, OrderStatusCancelled},
		{OrderStatusOutForDelivery, OrderStatusDelivered},
		{OrderStatusOutForDelivery, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransitionTo(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	rejected := []struct{ from, to string }{
		{OrderStatusPlaced, OrderStatusPacked},
		{OrderStatusPlaced, OrderStatusDelivered},
		{OrderStatusAccepted, OrderStatusPlaced},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPlaced},
		{OrderStatusCancelled, OrderStatusAccepted},
		{OrderStatusCancelled, OrderStatusCancelled},
		{"UNKNOWN", OrderStatusAccepted},
	}
	for _, tc := range rejected {
		if CanTransitionTo(tc.from, tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []string{OrderStatusDelivered, OrderStatusCancelled} {
		if len(ValidStatusTransitions[terminal]) != 0 {
			t.Errorf("%s must be terminal", terminal)
		}
	}
}

func TestEveryTargetIsAKnownStatus(t *testing.T) {
	for from, targets := range ValidStatusTransitions {
		for _, to := range targets {
			if _, ok := ValidStatusTransitions[to]; !ok {
				t.Errorf("transition %s -> %s points at an unknown status", from, to)
			}
		}
	}
}
