package chat

import "github.com/oakwellhq/chatgate/internal/ai"

// Turn is one (prompt, response) pair of past conversation.
type Turn struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// BuildMessages assembles the outbound message list: system prompt first, then
// the last window turns oldest to newest, each expanded into a user/assistant
// pair, then the new prompt. The provider reads message order as turn order.
//
// A turn with a missing prompt or response keeps its pair with empty content;
// dropping one side would shift every later turn by one role.
func BuildMessages(systemPrompt string, turns []Turn, prompt string, window int) []ai.Message {
	if window <= 0 {
		window = 3
	}
	if len(turns) > window {
		turns = turns[len(turns)-window:]
	}

	out := make([]ai.Message, 0, 2*len(turns)+2)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	for _, t := range turns {
		out = append(out, ai.Message{Role: ai.RoleUser, Content: t.Prompt})
		out = append(out, ai.Message{Role: ai.RoleAssistant, Content: t.Response})
	}
	out = append(out, ai.Message{Role: ai.RoleUser, Content: prompt})
	return out
}
