package services

import (
	"context"
	"unicode/utf8"

	"github.com/akademi/edutrack/internal/auth"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// actorID extracts the audit actor from a principal. Tokens for deleted
// accounts resolve without a user id; their activity rows carry NULL.
func actorID(p *auth.Principal) *uint {
	if p == nil || p.UserID == nil {
		return nil
	}
	id := *p.UserID
	return &id
}

// truncate clips s to at most max bytes without splitting a multi-byte rune
// at the cut. Stored log columns have fixed widths; callers pass whatever
// they have and the service bounds it.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
