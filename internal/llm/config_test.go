package llm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_ConfirmTaskIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 0.0, cfg.Tasks[TaskConfirm].Temperature)
	assert.Equal(t, 10, cfg.Tasks[TaskConfirm].MaxTokens)
	assert.Equal(t, 10000, cfg.TaskTimeout(TaskConfirm))
	assert.Equal(t, 60000, cfg.TaskTimeout(TaskDialogue))
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 9000
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskType("unknown")))
}

func TestWithTaskTimeout_CopiesTaskMap(t *testing.T) {
	base := DefaultConfig()
	tuned := base.WithTaskTimeout(TaskDialogue, 15000)

	assert.Equal(t, 15000, tuned.TaskTimeout(TaskDialogue))
	assert.Equal(t, 60000, base.TaskTimeout(TaskDialogue), "original must be untouched")
	assert.Equal(t, base, base.WithTaskTimeout(TaskDialogue, 0))
}

func TestLLMConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = ProviderOpenAI
	assert.Error(t, cfg.Validate())
	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestLogObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil))).OnCallComplete(LLMCallEvent{
		Task:      TaskConfirm,
		Provider:  ProviderOllama,
		Model:     "llama3.2",
		LatencyMs: 12,
		Attempts:  2,
		ErrorCode: "TIMEOUT",
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=llm_call")
	assert.Contains(t, out, "task=confirm")
	assert.Contains(t, out, "attempts=2")
	assert.Contains(t, out, "status=err:TIMEOUT")
}

func TestMultiObserver_FansOut(t *testing.T) {
	var a, b int
	m := MultiObserver{
		&captureObserver{fn: func(LLMCallEvent) { a++ }},
		&captureObserver{fn: func(LLMCallEvent) { b++ }},
	}
	m.OnCallComplete(LLMCallEvent{})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
