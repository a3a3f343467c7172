package prompts_test

import (
	"strings"
	"testing"

	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationPrompt(t *testing.T) {
	b := prompts.MustNew()

	segs, err := b.Validation("두 수의 합 문제를 어떻게 풀까요?")
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Equal(t, domain.RoleSystem, segs[0].Role)
	assert.Contains(t, segs[0].Text, "is_specific")
	assert.Equal(t, domain.RoleUser, segs[1].Role)
	assert.Equal(t, "사용자 요청: 두 수의 합 문제를 어떻게 풀까요?", segs[1].Text)
}

func TestSearchQueriesPrompt(t *testing.T) {
	b := prompts.MustNew()

	segs, err := b.SearchQueries("중복 숫자 찾기", "배열 탐색", 4)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	assert.Contains(t, segs[0].Text, "최대 4개까지 생성")
	assert.Equal(t, "사용자 요청: 중복 숫자 찾기\n추출된 의도: 배열 탐색", segs[1].Text)
}

func TestTutorPrompt(t *testing.T) {
	b := prompts.MustNew()
	history := []domain.Message{domain.UserMessage("힌트 주세요"), domain.AssistantMessage("어떤 자료구조를 떠올렸나요?"), domain.UserMessage("해시셋?")}

	t.Run("with code", func(t *testing.T) {
		segs, err := b.Tutor(prompts.TutorInput{Code: "def f(nums):\n    pass", History: history})
		require.NoError(t, err)
		require.Len(t, segs, 4)

		assert.Equal(t, domain.RoleSystem, segs[0].Role)
		assert.Contains(t, segs[0].Text, "소크라테스식 대화")
		assert.True(t, strings.HasSuffix(segs[0].Text, "**현재 학생 코드:**\n```\ndef f(nums):\n    pass\n```"), segs[0].Text)

		assert.Equal(t, domain.RoleUser, segs[1].Role)
		assert.Equal(t, domain.RoleAssistant, segs[2].Role)
		assert.Equal(t, "해시셋?", segs[3].Text)
	})

	t.Run("blank code is omitted", func(t *testing.T) {
		segs, err := b.Tutor(prompts.TutorInput{Code: "   \n", History: history})
		require.NoError(t, err)
		assert.NotContains(t, segs[0].Text, "현재 학생 코드")
		assert.True(t, strings.HasSuffix(segs[0].Text, "간결하게 유지하세요."))
	})

	t.Run("persona and topics", func(t *testing.T) {
		segs, err := b.Tutor(prompts.TutorInput{Persona: "beginner", Topics: []string{"배열", "해시"}})
		require.NoError(t, err)
		require.Len(t, segs, 1)
		assert.Contains(t, segs[0].Text, "**학생 페르소나:** beginner")
		assert.Contains(t, segs[0].Text, "**학습 주제:** 배열, 해시")
	})
}

func TestGreeting(t *testing.T) {
	b := prompts.MustNew()

	generic, err := b.Greeting(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generic, "안녕하세요!"))

	topical, err := b.Greeting([]string{"동적 계획법", "그래프"})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요! '동적 계획법'에 대해 함께 배워볼까요? 첫 번째 문제로 시작해보겠습니다. 궁금한 점이 있으면 언제든 질문해주세요!", topical)
}

func TestWithTemplates(t *testing.T) {
	b, err := prompts.New(prompts.WithTemplates(map[string]string{
		prompts.NameValidationUser: "Q: {{.Message}}",
		"unknown":                  "ignored",
		prompts.NameSearchUser:     "   ",
	}))
	require.NoError(t, err)

	segs, err := b.Validation("hi")
	require.NoError(t, err)
	assert.Equal(t, "Q: hi", segs[1].Text)

	segs, err = b.SearchQueries("m", "i", 1)
	require.NoError(t, err)
	assert.Contains(t, segs[1].Text, "사용자 요청: m", "blank override keeps the built-in")
}

func TestNew_InvalidTemplate(t *testing.T) {
	_, err := prompts.New(prompts.WithTemplates(map[string]string{
		prompts.NameTutorSystem: "{{.Code",
	}))
	assert.Error(t, err)
}

func TestNormalizeUserMessage(t *testing.T) {
	_, ok := prompts.NormalizeUserMessage("  \t\n")
	assert.False(t, ok)

	msg, ok := prompts.NormalizeUserMessage(" hi ")
	assert.True(t, ok)
	assert.Equal(t, " hi ", msg)
}
