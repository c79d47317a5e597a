package ctxengine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aeris-bot/aeris/internal/provider"
)

// MergeMemories returns a new sequence with one synthetic system message
// carrying up to maxFacts long-term memory snippets. The memories arrive
// already ranked; only injection happens here.
//
// The memory message is placed immediately before the first non-system
// message, i.e. after any summaries but before the actual dialogue. If the
// sequence is entirely system messages it goes at the end. With no
// memories the input is returned as-is, no empty message is created.
func MergeMemories(msgs []Message, memories []string, maxFacts int, persona string, now time.Time) []Message {
	if len(memories) == 0 || maxFacts <= 0 {
		return msgs
	}
	if len(memories) > maxFacts {
		memories = memories[:maxFacts]
	}

	var b strings.Builder
	b.WriteString("[Important facts and memories to consider]\n")
	for i, mem := range memories {
		fmt.Fprintf(&b, "Fact %d: %s\n", i+1, mem)
	}

	memoryMsg := Message{
		Role:      provider.MessageRoleSystem,
		Content:   strings.TrimRight(b.String(), "\n"),
		Timestamp: now.UTC(),
		Persona:   persona,
		Metadata: map[string]string{
			metaType:      typeMemories,
			metaFactCount: strconv.Itoa(len(memories)),
		},
	}

	insertAt := len(msgs)
	for i, m := range msgs {
		if m.Role != provider.MessageRoleSystem {
			insertAt = i
			break
		}
	}

	out := make([]Message, 0, len(msgs)+1)
	out = append(out, msgs[:insertAt]...)
	out = append(out, memoryMsg)
	return append(out, msgs[insertAt:]...)
}
