package service

import (
	"github.com/brightdesk/support-service/internal/completion"
	"github.com/brightdesk/support-service/internal/model"
)

// BuildTranscript maps stored conversation history to completion turns in
// creation-time order, with the agent's system prompt (when non-empty)
// prepended as the first turn. Message content is carried verbatim.
func BuildTranscript(systemPrompt string, history []model.Message) []completion.Turn {
	turns := make([]completion.Turn, 0, len(history)+1)
	if systemPrompt != "" {
		turns = append(turns, completion.Turn{Role: completion.RoleSystem, Text: systemPrompt})
	}
	for _, msg := range history {
		switch msg.Role {
		case model.MessageRoleUser:
			turns = append(turns, completion.Turn{Role: completion.RoleUser, Text: msg.Content})
		case model.MessageRoleAssistant:
			turns = append(turns, completion.Turn{Role: completion.RoleAssistant, Text: msg.Content})
		}
	}
	return turns
}
