package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/ports"
)

// Mask replaces every redacted span.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d{2,3}[- ]?\d{3,4}[- ]?\d{4}`,
}

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks conversation text matching the patterns
// before it reaches the store.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, session *domain.Session) error {
	// Clone so the caller's session keeps the original text.
	cloned := session.Clone()
	for i, msg := range cloned.History {
		cloned.History[i].Text = m.mask(msg.Text)
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, Mask)
	}
	return text
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
