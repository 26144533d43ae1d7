package completion

import (
	"context"
	"errors"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged text unit within a transcript.
type Turn struct {
	Role Role
	Text string
}

// Params are the per-agent generation parameters, used verbatim.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client calls the hosted completion provider with an ordered transcript.
// Implementations return the raw generated text; callers own trimming and
// fallback policy.
type Client interface {
	Generate(ctx context.Context, transcript []Turn, p Params) (string, error)
}

var errNotConfigured = errors.New("completion provider not configured")

type disabledClient struct{}

func (disabledClient) Generate(context.Context, []Turn, Params) (string, error) {
	return "", errNotConfigured
}

// Disabled returns a client whose calls always fail. The message exchange
// absorbs the failure into its canned reply, so a service without provider
// credentials still answers.
func Disabled() Client {
	return disabledClient{}
}
