package tutorgraph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/internal/testutils"
	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/nodes"
	"github.com/aretw0/tutorgraph/pkg/pipeline"
	"github.com/aretw0/tutorgraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresProvider(t *testing.T) {
	_, err := tutorgraph.New(nil)
	assert.Error(t, err)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSearchQueries = 0

	_, err := tutorgraph.New(testutils.NewScriptedProvider(), tutorgraph.WithConfig(cfg))
	assert.Error(t, err)
}

func TestEngine_UnknownGraph(t *testing.T) {
	eng, err := tutorgraph.New(testutils.NewScriptedProvider())
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), "ghost", domain.NewState())
	assert.ErrorIs(t, err, registry.ErrGraphNotFound)
}

func TestEngine_ValidationFailureShortCircuits(t *testing.T) {
	provider := testutils.NewScriptedProvider(testutils.Reply{Err: errors.New("connection reset")})

	var events []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) { events = append(events, "enter:"+e.NodeID) },
		OnRunEnd:    func(_ context.Context, e *domain.RunEvent) { events = append(events, "end") },
	}

	eng, err := tutorgraph.New(provider, tutorgraph.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), pipeline.Enriched, domain.NewState(domain.UserMessage("중복 숫자")))
	require.NoError(t, err)

	require.NotNil(t, final.Error)
	assert.Equal(t, nodes.ValidateRequest, final.Error.Stage)
	assert.Equal(t, string(capability.KindTransport), final.Error.Message)
	assert.Empty(t, final.SearchQueries)
	assert.Equal(t, []string{"enter:" + nodes.ValidateRequest, "end"}, events)
	assert.Len(t, provider.Calls(), config.Default().MaxRetries+1)
}

func TestEngine_ProviderMiddleware(t *testing.T) {
	var models []string
	record := func(next capability.Provider) capability.Provider {
		return capability.ProviderFunc(func(ctx context.Context, req capability.ProviderRequest) (string, error) {
			models = append(models, req.Model)
			return next.Complete(ctx, req)
		})
	}

	cfg := config.Default()
	cfg.ContentModel = "tutor-model"
	eng, err := tutorgraph.New(testutils.NewScriptedProvider(testutils.Reply{Text: "힌트"}),
		tutorgraph.WithConfig(cfg),
		tutorgraph.WithProviderMiddleware(record),
	)
	require.NoError(t, err)

	final, err := eng.Run(context.Background(), pipeline.Tutoring, domain.NewState(domain.UserMessage("도와주세요")))
	require.NoError(t, err)
	assert.Equal(t, "힌트", final.UserResponse)
	assert.Equal(t, []string{"tutor-model"}, models)
	assert.Equal(t, cfg, eng.Config())
}
