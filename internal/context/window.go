package ctxengine

import "github.com/aeris-bot/aeris/internal/provider"

// TrimWindow bounds the dialogue to the w most recent turns.
//
// The sequence is partitioned into system messages and dialogue, each
// keeping its relative order. Only the dialogue partition is trimmed,
// oldest first; system messages (summaries, memories) are few, small,
// and valuable, so token pressure on them is left to the optimizer.
// The result is system messages followed by the trimmed dialogue.
func TrimWindow(msgs []Message, w int) []Message {
	var system, dialogue []Message
	for _, m := range msgs {
		if m.Role == provider.MessageRoleSystem {
			system = append(system, m)
		} else {
			dialogue = append(dialogue, m)
		}
	}

	if w > 0 && len(dialogue) > w {
		dialogue = dialogue[len(dialogue)-w:]
	}

	out := make([]Message, 0, len(system)+len(dialogue))
	out = append(out, system...)
	return append(out, dialogue...)
}
