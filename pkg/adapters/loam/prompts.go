// Package loam reads Markdown prompt packs through a read-only Loam repository.
//
// Each document of the pack overrides one built-in prompt template. The
// template name is taken from the `name` front-matter key or, when absent,
// from the file name without its extension:
//
//	---
//	name: tutor_system
//	description: Stricter tutor for interview practice
//	---
//	You are an interview coach...
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// PromptMetadata is the front matter of a prompt document.
type PromptMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
}

// PromptPack adapts a Loam repository to a set of named prompt templates.
type PromptPack struct {
	Repo *loam.TypedRepository[PromptMetadata]
}

// New creates a prompt pack over an existing typed repository.
func New(repo *loam.TypedRepository[PromptMetadata]) *PromptPack {
	return &PromptPack{
		Repo: repo,
	}
}

// Open initializes a strict, read-only Loam repository rooted at dir.
func Open(dir string) (*PromptPack, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid prompt dir: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[PromptMetadata](repo)), nil
}

// Load returns every template of the pack keyed by name.
func (p *PromptPack) Load(ctx context.Context) (map[string]string, error) {
	docs, err := p.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	templates := make(map[string]string, len(docs))

	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = doc.ID
		}
		name = trimExtension(name)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: prompt '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		templates[name] = strings.TrimSpace(doc.Content)
	}
	return templates, nil
}

// LoadDir opens dir and loads its templates.
func LoadDir(ctx context.Context, dir string) (map[string]string, error) {
	pack, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return pack.Load(ctx)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
