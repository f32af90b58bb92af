package ai

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider performs one completion call for an assembled message list.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ErrUpstreamTimeout marks a provider call that exceeded its time budget.
var ErrUpstreamTimeout = errors.New("ai: upstream timeout")

// UpstreamError carries a non-success or malformed provider result. Status is
// the upstream HTTP status, or 0 for transport-level failures.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ai: upstream status %d: %s", e.Status, e.Message)
	}
	return "ai: upstream: " + e.Message
}
