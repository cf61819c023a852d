// Package completion is the boundary to the external LLM completion service.
// Callers submit role-tagged messages for a model tier and receive raw text.
package completion

import (
	"context"
	"errors"
	"fmt"
)

// Role tags a message in a completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tier selects a logical model class. Providers map tiers to concrete models.
type Tier string

const (
	TierReasoning Tier = "reasoning" // high-reasoning model, template expansion
	TierFast      Tier = "fast"      // fast/cheap model, synthesis, refinement, review
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call.
type Request struct {
	Tier        Tier
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client submits a completion request and returns the raw response text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

var (
	// ErrUnauthorized means the provider rejected the credentials. It is a
	// configuration error and is never retried.
	ErrUnauthorized = errors.New("completion service rejected credentials")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("completion service returned no content")
	// ErrCircuitOpen means recent calls failed often enough that the breaker is open.
	ErrCircuitOpen = errors.New("completion service circuit open")
	// ErrUnknownTier means no model is configured for the requested tier.
	ErrUnknownTier = errors.New("no model configured for tier")
)

// Models maps tiers to provider model names.
type Models map[Tier]string

// Resolve returns the model configured for the tier.
func (m Models) Resolve(t Tier) (string, error) {
	model, ok := m[t]
	if !ok || model == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownTier, t)
	}
	return model, nil
}

// splitSystem separates system messages (joined) from the conversation turns.
func splitSystem(msgs []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
