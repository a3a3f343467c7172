package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/tutorgraph/internal/testutils"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat_Conversation(t *testing.T) {
	app, provider := buildApp(t, config.DefaultSettings(),
		testutils.Reply{Text: "첫 번째 힌트"},
		testutils.Reply{Text: "두 번째 힌트"},
	)

	codeFile := filepath.Join(t.TempDir(), "solution.py")
	require.NoError(t, os.WriteFile(codeFile, []byte("nums = [1, 2, 2]"), 0644))

	in := strings.NewReader("중복을 어떻게 찾죠?\n/code " + codeFile + "\n\n이 코드는요?\n/quit\n")
	var out bytes.Buffer
	err := RunChat(context.Background(), app, in, &out, ChatOptions{Quiet: true})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "안녕하세요")
	assert.Contains(t, text, "첫 번째 힌트")
	assert.Contains(t, text, "Attached")
	assert.Contains(t, text, "두 번째 힌트")

	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.NotContains(t, calls[0].Messages[0].Text, "nums = [1, 2, 2]")
	assert.Contains(t, calls[1].Messages[0].Text, "nums = [1, 2, 2]")
}

func TestRunChat_SessionLifecycle(t *testing.T) {
	app, _ := buildApp(t, config.DefaultSettings(), testutils.Reply{Text: "좋은 질문"})

	in := strings.NewReader("배열이 뭐예요?\n")
	var out bytes.Buffer
	err := RunChat(context.Background(), app, in, &out, ChatOptions{
		UserID:  "u1",
		Topics:  []string{"arrays"},
		Persona: "friendly",
	})
	require.NoError(t, err, "EOF ends the REPL cleanly")
	assert.Contains(t, out.String(), "'arrays'")

	ids, err := app.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	sess, err := app.Sessions.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.False(t, sess.Active())
	require.Len(t, sess.History, 3, "greeting, question, reply")
	assert.Equal(t, "좋은 질문", sess.History[2].Text)
}

func TestRunChat_SwitchGraph(t *testing.T) {
	app, _ := buildApp(t, config.DefaultSettings(),
		testutils.Reply{Text: `{"is_specific": false, "clarification_question": "어떤 문제인가요?", "extracted_requirements": {}}`},
	)

	in := strings.NewReader("/graph nope\n/graph " + pipeline.Validation + "\n날씨 어때?\n/exit\n")
	var out bytes.Buffer
	err := RunChat(context.Background(), app, in, &out, ChatOptions{Graph: pipeline.Validation, Quiet: true})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Unknown graph 'nope'")
	assert.Contains(t, text, "어떤 문제인가요?")
	assert.NotContains(t, text, "안녕하세요")
}

func TestRunChat_Canceled(t *testing.T) {
	app, _ := buildApp(t, config.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := RunChat(ctx, app, strings.NewReader("hello\n"), &out, ChatOptions{Graph: pipeline.Validation, Quiet: true})
	assert.NoError(t, err)
}
