package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// Markers for the implicit entry and exit of every graph.
const (
	START = "__start__"
	END   = "__end__"
)

// Handler is the unit of work of a node. It reads the current state and the run
// configuration and returns the fields it produced. Handlers must not mutate state.
type Handler func(ctx context.Context, state *domain.State, cfg config.Config) (domain.Partial, error)

// Router picks the next node from the state produced by the previous one.
// It must be pure and synchronous.
type Router func(state *domain.State) string

// Node is an immutable step descriptor.
type Node struct {
	Name    string
	Handler Handler
	// RequiredConfig lists the configuration keys the handler reads.
	RequiredConfig []string
	// Outputs lists the state fields the handler may write.
	Outputs     []string
	Description string
}

// Edge leaves a node either to a fixed target or through a router.
type Edge struct {
	From string
	// To is the fixed target of a static edge.
	To string
	// Router and Destinations describe a conditional edge.
	Router       Router
	Destinations []string
}

// Conditional reports whether the edge is resolved by a router.
func (e Edge) Conditional() bool {
	return e.Router != nil
}

// Targets lists every node the edge may lead to.
func (e Edge) Targets() []string {
	if e.Conditional() {
		return e.Destinations
	}
	return []string{e.To}
}

// ErrConfiguration is matched by every ConfigurationError.
var ErrConfiguration = errors.New("invalid graph configuration")

// ConfigurationError is returned by Compile when a graph is malformed.
type ConfigurationError struct {
	Graph    string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("graph %q: found %d errors:\n- %s", e.Graph, len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// RoutingError is returned when a router picks a destination it did not declare.
type RoutingError struct {
	From    string
	Got     string
	Allowed []string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("router of %q returned undeclared destination %q (allowed: %s)", e.From, e.Got, strings.Join(e.Allowed, ", "))
}
