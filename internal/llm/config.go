package llm

import "fmt"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskDialogue produces the assistant reply plus extracted event fields.
	TaskDialogue TaskType = "dialogue"
	// TaskConfirm classifies a single utterance as an explicit yes or not.
	TaskConfirm TaskType = "confirm"
)

// Provider selects the wire protocol used to reach the model.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  10000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskDialogue: {Temperature: 0.7, MaxTokens: 800, TimeoutMs: 60000},
			TaskConfirm:  {Temperature: 0, MaxTokens: 10, TimeoutMs: 10000},
		},
	}
}

// Validate reports configuration that cannot produce a working client.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("llm provider %q requires an api key", c.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	return nil
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// WithTaskTimeout returns a copy of c with task's timeout replaced.
// Non-positive values are ignored.
func (c LLMConfig) WithTaskTimeout(task TaskType, ms int) LLMConfig {
	if ms <= 0 {
		return c
	}
	tasks := make(map[TaskType]TaskConfig, len(c.Tasks))
	for k, v := range c.Tasks {
		tasks[k] = v
	}
	tc := tasks[task]
	tc.TimeoutMs = ms
	tasks[task] = tc
	c.Tasks = tasks
	return c
}

// resolve returns the effective temperature and token budget for req.
func (c LLMConfig) resolve(req GenerateRequest) (float64, int) {
	taskCfg := c.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	return temp, maxTok
}
