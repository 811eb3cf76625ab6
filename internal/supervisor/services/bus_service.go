// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package services

import (
	"context"
	"fmt"
)

// EventBus matches the message bus lifecycle used by the wrapper.
// Satisfied by *events.Bus.
type EventBus interface {
	Run(ctx context.Context) error
}

// EventBusService runs the in-process message bus under supervision.
// If the bus's router stops with an error the supervisor restarts it,
// re-attaching the registered consumers.
type EventBusService struct {
	bus  EventBus
	name string
}

// NewEventBusService wraps a message bus as a supervised service.
func NewEventBusService(bus EventBus) *EventBusService {
	return &EventBusService{
		bus:  bus,
		name: "event-bus",
	}
}

// Serve implements suture.Service. Run blocks until the context is
// canceled or the router fails.
func (s *EventBusService) Serve(ctx context.Context) error {
	if err := s.bus.Run(ctx); err != nil {
		return fmt.Errorf("event bus stopped: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *EventBusService) String() string {
	return s.name
}
