package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"

	"github.com/aretw0/tutorgraph/internal/testutils"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPack_Load(t *testing.T) {
	files := map[string]string{
		"tutor.md": `---
name: tutor_system
description: English tutor
---
You are a patient tutor.{{if .HasCode}} Code: {{.Code}}{{end}}`,
		"validation_user.md": `---
description: implicit name
---
Request: {{.Message}}`,
	}
	_, repo := testutils.PromptPack(t, files)

	pack := New(loam.NewTypedRepository[PromptMetadata](repo))
	templates, err := pack.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, templates, 2)
	assert.Contains(t, templates["tutor_system"], "You are a patient tutor.")
	assert.Equal(t, "Request: {{.Message}}", templates["validation_user"])

	// The pack plugs into the prompt builder.
	b, err := prompts.New(prompts.WithTemplates(templates))
	require.NoError(t, err)

	segs, err := b.Tutor(prompts.TutorInput{Code: "x = 1"})
	require.NoError(t, err)
	assert.Equal(t, "You are a patient tutor. Code: x = 1", segs[0].Text)

	segs, err = b.Validation("hi")
	require.NoError(t, err)
	assert.Equal(t, "Request: hi", segs[1].Text)
}

func TestPromptPack_DetectsCollisions(t *testing.T) {
	files := map[string]string{
		"greeting.md": "Hello!",
		"other.md": `---
name: greeting
---
Hi!`,
	}
	_, repo := testutils.PromptPack(t, files)

	pack := New(loam.NewTypedRepository[PromptMetadata](repo))
	_, err := pack.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "greeting")
}
