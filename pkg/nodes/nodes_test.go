package nodes_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tutorgraph/internal/testutils"
	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/nodes"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidation_ValidRequest(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, testutils.SchemaNamed("request_validation")).
		Return(capability.Result{Data: map[string]any{
			"is_specific":            true,
			"clarification_question": "",
			"extracted_requirements": map[string]any{"intent": "중복 숫자 찾기 알고리즘"},
		}, Attempts: 1}, nil)

	node := nodes.Validation(adapter, prompts.MustNew())
	state := domain.NewState(
		domain.UserMessage("첫 질문"),
		domain.AssistantMessage("답변"),
		domain.UserMessage("배열에서 중복된 숫자를 찾는 방법은?"),
	)

	partial, err := node.Handler(context.Background(), state, config.Default())
	require.NoError(t, err)

	assert.Equal(t, domain.Partial{
		domain.KeyIsRequestValid: true,
		domain.KeyUserResponse:   "",
		domain.KeyUserIntent:     "중복 숫자 찾기 알고리즘",
	}, partial)

	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	require.Len(t, req.Prompt, 2)
	assert.Contains(t, req.Prompt[1].Text, "배열에서 중복된 숫자를 찾는 방법은?", "latest user turn is classified")
	assert.NotContains(t, req.Prompt[1].Text, "첫 질문")
	assert.Equal(t, config.DefaultModel, req.Options.Model)
	assert.InDelta(t, 0.1, req.Options.Temperature, 1e-6)
	assert.Equal(t, 2, req.Options.MaxRetries)
	assert.Equal(t, 30*time.Second, req.Options.Timeout)
	adapter.AssertExpectations(t)
}

func TestValidation_VagueRequest(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, mock.Anything).
		Return(capability.Result{Data: map[string]any{
			"is_specific":            false,
			"clarification_question": "어떤 문제를 풀고 계신가요?",
			"extracted_requirements": map[string]any{},
		}}, nil)

	partial, err := nodes.Validation(adapter, prompts.MustNew()).
		Handler(context.Background(), domain.NewState(domain.UserMessage("도와줘")), config.Default())
	require.NoError(t, err)

	assert.Equal(t, false, partial[domain.KeyIsRequestValid])
	assert.Equal(t, "어떤 문제를 풀고 계신가요?", partial[domain.KeyUserResponse])
	assert.Equal(t, "", partial[domain.KeyUserIntent])
}

func TestValidation_NoUserMessage(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, mock.Anything).
		Return(capability.Result{Data: map[string]any{
			"is_specific":            false,
			"clarification_question": "질문을 입력해주세요.",
			"extracted_requirements": map[string]any{"intent": nil},
		}}, nil)

	_, err := nodes.Validation(adapter, prompts.MustNew()).
		Handler(context.Background(), domain.NewState(domain.AssistantMessage("안녕하세요")), config.Default())
	require.NoError(t, err)

	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	assert.Equal(t, "사용자 요청: ", req.Prompt[1].Text)
}

func TestValidation_FailureIsReturnedUnchanged(t *testing.T) {
	failure := &capability.Failure{Kind: capability.KindSchemaInvalid, Attempts: 3}
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, mock.Anything).Return(capability.Result{}, failure)

	partial, err := nodes.Validation(adapter, prompts.MustNew()).
		Handler(context.Background(), domain.NewState(domain.UserMessage("q")), config.Default())
	assert.Nil(t, partial)
	assert.Same(t, failure, err)
}

func TestEnrichment_TruncatesQueries(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, testutils.SchemaNamed("search_queries")).
		Return(capability.Result{Data: map[string]any{
			"queries":   []any{"q1", "q2", "q3", "q4", "q5"},
			"rationale": "다양한 관점",
		}}, nil)

	cfg := config.Default()
	cfg.MaxSearchQueries = 2
	state := &domain.State{
		Messages:   []domain.Message{domain.UserMessage("투 포인터가 뭐예요?")},
		UserIntent: "투 포인터 개념",
	}

	partial, err := nodes.Enrichment(adapter, prompts.MustNew()).Handler(context.Background(), state, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2"}, partial[domain.KeySearchQueries])
	assert.Equal(t, "다양한 관점", partial[domain.KeySearchRationale])

	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	assert.Contains(t, req.Prompt[0].Text, "최대 2개까지 생성")
	assert.Contains(t, req.Prompt[1].Text, "추출된 의도: 투 포인터 개념")
	assert.InDelta(t, 0.3, req.Options.Temperature, 1e-6)
}

func TestEnrichment_DefaultIntent(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, mock.Anything).
		Return(capability.Result{Data: map[string]any{"queries": []any{}, "rationale": ""}}, nil)

	partial, err := nodes.Enrichment(adapter, prompts.MustNew()).
		Handler(context.Background(), domain.NewState(domain.UserMessage("q")), config.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{}, partial[domain.KeySearchQueries])
	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	assert.Contains(t, req.Prompt[1].Text, nodes.DefaultIntent)
}

func TestSynthesis_GreetingWithoutAdapterCall(t *testing.T) {
	adapter := new(testutils.MockAdapter)

	for _, state := range []*domain.State{
		domain.NewState(),
		domain.NewState(domain.AssistantMessage("이전 안내")),
	} {
		partial, err := nodes.Synthesis(adapter, prompts.MustNew()).Handler(context.Background(), state, config.Default())
		require.NoError(t, err)

		text, ok := partial[domain.KeyUserResponse].(string)
		require.True(t, ok)
		assert.Contains(t, text, "안녕하세요!")
		assert.Equal(t, domain.AssistantMessage(text), partial[domain.KeyMessages])
	}

	adapter.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestSynthesis_TopicGreeting(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	state := &domain.State{Topics: []string{"해시 테이블", "정렬"}}

	partial, err := nodes.Synthesis(adapter, prompts.MustNew()).Handler(context.Background(), state, config.Default())
	require.NoError(t, err)

	assert.Contains(t, partial[domain.KeyUserResponse], "'해시 테이블'")
}

func TestSynthesis_FreeTextReply(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, testutils.FreeText()).
		Return(capability.Result{Text: "어떤 자료구조를 쓰면 이미 본 숫자를 빠르게 확인할 수 있을까요?", Attempts: 1}, nil)

	code := "def find_dup(nums):\n    pass"
	state := &domain.State{
		Messages:    []domain.Message{domain.UserMessage("중복을 어떻게 찾죠?")},
		CurrentCode: &code,
		Persona:     "초보자",
	}

	partial, err := nodes.Synthesis(adapter, prompts.MustNew()).Handler(context.Background(), state, config.Default())
	require.NoError(t, err)

	want := "어떤 자료구조를 쓰면 이미 본 숫자를 빠르게 확인할 수 있을까요?"
	assert.Equal(t, want, partial[domain.KeyUserResponse])
	assert.Equal(t, domain.AssistantMessage(want), partial[domain.KeyMessages])

	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	require.Len(t, req.Prompt, 2)
	assert.Equal(t, domain.RoleSystem, req.Prompt[0].Role)
	assert.Contains(t, req.Prompt[0].Text, code)
	assert.Contains(t, req.Prompt[0].Text, "초보자")
	assert.Equal(t, capability.User("중복을 어떻게 찾죠?"), req.Prompt[1])
	assert.InDelta(t, 0.7, req.Options.Temperature, 1e-6)
}

func TestSynthesis_BlankCodeIsOmitted(t *testing.T) {
	adapter := new(testutils.MockAdapter)
	adapter.On("Invoke", mock.Anything, mock.Anything).Return(capability.Result{Text: "힌트"}, nil)

	blank := "   "
	state := &domain.State{Messages: []domain.Message{domain.UserMessage("q")}, CurrentCode: &blank}

	_, err := nodes.Synthesis(adapter, prompts.MustNew()).Handler(context.Background(), state, config.Default())
	require.NoError(t, err)

	req := adapter.Calls[0].Arguments.Get(1).(capability.Request)
	assert.NotContains(t, req.Prompt[0].Text, "현재 학생 코드")
}

func TestValidation_WithClient(t *testing.T) {
	provider := testutils.NewScriptedProvider(
		testutils.Reply{Text: "not json"},
		testutils.Reply{Text: "```json\n{\"is_specific\": true, \"clarification_question\": \"\", \"extracted_requirements\": {\"intent\": \"정렬\"}}\n```"},
	)
	client := capability.NewClient(provider)

	partial, err := nodes.Validation(client, prompts.MustNew()).
		Handler(context.Background(), domain.NewState(domain.UserMessage("정렬 알고리즘 비교")), config.Default())
	require.NoError(t, err)

	assert.Equal(t, true, partial[domain.KeyIsRequestValid])
	assert.Equal(t, "정렬", partial[domain.KeyUserIntent])
	assert.Equal(t, 2, provider.CallCount())
}
