package pipeline

import (
	"errors"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/aretw0/tutorgraph/pkg/nodes"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/aretw0/tutorgraph/pkg/registry"
)

// Graph names.
const (
	Validation = "validation"
	Enriched   = "enriched"
	Tutoring   = "tutoring"
)

// ProceedToEnrichment routes a validated request to query generation and
// everything else to END.
func ProceedToEnrichment(s *domain.State) string {
	if s != nil && s.IsRequestValid {
		return nodes.GenerateQueries
	}
	return graph.END
}

// ValidationGraph classifies the request and stops.
func ValidationGraph(adapter capability.Adapter, builder prompts.Builder, opts ...nodes.Option) (*graph.Definition, error) {
	return graph.New(Validation).
		AddNode(nodes.Validation(adapter, builder, opts...)).
		AddEdge(graph.START, nodes.ValidateRequest).
		AddEdge(nodes.ValidateRequest, graph.END).
		Compile(domain.DefaultReducers())
}

// EnrichedGraph classifies the request and plans search queries for valid ones.
func EnrichedGraph(adapter capability.Adapter, builder prompts.Builder, opts ...nodes.Option) (*graph.Definition, error) {
	return graph.New(Enriched).
		AddNode(nodes.Validation(adapter, builder, opts...)).
		AddNode(nodes.Enrichment(adapter, builder, opts...)).
		AddEdge(graph.START, nodes.ValidateRequest).
		AddConditionalEdge(nodes.ValidateRequest, ProceedToEnrichment, nodes.GenerateQueries, graph.END).
		AddEdge(nodes.GenerateQueries, graph.END).
		Compile(domain.DefaultReducers())
}

// TutoringGraph produces a tutor reply for the conversation.
func TutoringGraph(adapter capability.Adapter, builder prompts.Builder, opts ...nodes.Option) (*graph.Definition, error) {
	return graph.New(Tutoring).
		AddNode(nodes.Synthesis(adapter, builder, opts...)).
		AddEdge(graph.START, nodes.TutorResponse).
		AddEdge(nodes.TutorResponse, graph.END).
		Compile(domain.DefaultReducers())
}

// New compiles every topology once and registers them by name. Any
// configuration error aborts.
func New(adapter capability.Adapter, builder prompts.Builder, opts ...nodes.Option) (*registry.Registry, error) {
	reg := registry.NewRegistry()
	var errs []error
	for _, build := range []func(capability.Adapter, prompts.Builder, ...nodes.Option) (*graph.Definition, error){
		ValidationGraph,
		EnrichedGraph,
		TutoringGraph,
	} {
		def, err := build(adapter, builder, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reg.Register(def)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}
