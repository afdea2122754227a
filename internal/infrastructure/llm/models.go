// Package llm adapts hosted language models to the completion port.
package llm

import "IdeaScout/internal/ports"

// Models picks a model name per pipeline task.
type Models struct {
	Default string
	PerTask map[ports.LLMTask]string
}

// For returns the task override or the default model.
func (m Models) For(task ports.LLMTask) string {
	if name, ok := m.PerTask[task]; ok && name != "" {
		return name
	}
	return m.Default
}
