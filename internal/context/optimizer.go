package ctxengine

import (
	"log/slog"

	"github.com/aeris-bot/aeris/internal/provider"
)

// budgetExceededNotice is returned as the sole context entry when even a
// single system message cannot fit the token budget. The pipeline always
// returns something usable instead of erroring.
const budgetExceededNotice = "Error: the conversation context is too large to optimize. Please try again."

// Optimizer enforces the hard token budget on a wire-format message list.
type Optimizer struct {
	counter TokenCounter
	model   string
	budget  int
	logger  *slog.Logger
}

// NewOptimizer creates an Optimizer counting tokens for model with a
// total budget of maxTokens.
func NewOptimizer(counter TokenCounter, model string, maxTokens int, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Optimizer{counter: counter, model: model, budget: maxTokens, logger: logger}
}

// Optimize returns a subsequence of msgs whose total token cost fits the
// budget. Messages are kept whole or dropped whole, never truncated.
//
// The budget is split in two tiers: system messages are costed first and
// the remainder goes to dialogue, filled newest-first so the most recent
// turns survive. If the system messages alone exceed the budget, all but
// the most recent one are dropped; if that still does not fit, a single
// synthetic notice is returned rather than an error.
func (o *Optimizer) Optimize(msgs []provider.LLMMessage) []provider.LLMMessage {
	total := 0
	for _, m := range msgs {
		total += o.counter.Count(m.Content, o.model)
	}
	if total <= o.budget {
		return msgs
	}

	o.logger.Info("ctxengine: context over token budget, optimizing",
		"tokens", total, "budget", o.budget)

	var system, dialogue []provider.LLMMessage
	for _, m := range msgs {
		if m.Role == provider.MessageRoleSystem {
			system = append(system, m)
		} else {
			dialogue = append(dialogue, m)
		}
	}

	systemTokens := 0
	for _, m := range system {
		systemTokens += o.counter.Count(m.Content, o.model)
	}

	if systemTokens > o.budget {
		o.logger.Warn("ctxengine: system messages alone exceed token budget",
			"system_tokens", systemTokens, "budget", o.budget)
		if len(system) > 1 {
			// Keep only the most recent system message.
			system = system[len(system)-1:]
			systemTokens = o.counter.Count(system[0].Content, o.model)
		}
		if systemTokens > o.budget {
			o.logger.Error("ctxengine: cannot build context, system messages too large",
				"system_tokens", systemTokens, "budget", o.budget)
			optimizerInfeasibleTotal.Inc()
			return []provider.LLMMessage{{
				Role:    provider.MessageRoleUser,
				Content: budgetExceededNotice,
			}}
		}
	}

	remaining := o.budget - systemTokens

	// Newest-first greedy fill: walk the dialogue backwards and keep every
	// message that still fits, whole. Chronological order is restored by
	// prepending, so the output stays oldest-to-newest.
	var selected []provider.LLMMessage
	used := 0
	for i := len(dialogue) - 1; i >= 0; i-- {
		cost := o.counter.Count(dialogue[i].Content, o.model)
		if used+cost > remaining {
			continue
		}
		selected = append([]provider.LLMMessage{dialogue[i]}, selected...)
		used += cost
	}

	dropped := len(dialogue) - len(selected)
	if dropped > 0 {
		optimizerDroppedTotal.Add(float64(dropped))
	}
	o.logger.Info("ctxengine: context optimized",
		"messages", len(system)+len(selected),
		"dropped", dropped,
		"tokens", systemTokens+used)

	out := make([]provider.LLMMessage, 0, len(system)+len(selected))
	out = append(out, system...)
	return append(out, selected...)
}
