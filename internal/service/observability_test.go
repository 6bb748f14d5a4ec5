package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_WritesOutcome(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "submit-plan",
		Duration: 12 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"plan_id": "p1"},
	})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "approve-plan",
		Err:  errors.New("not allowed"),
	})

	out := buf.String()
	assert.Contains(t, out, "use_case=submit-plan")
	assert.Contains(t, out, "duration_ms=12")
	assert.Contains(t, out, "plan_id=p1")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="not allowed"`)
}

func TestObserverConstructors_NilFallsBackToNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))
}

func TestSlogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "create-plan", Success: true})

	assert.Contains(t, buf.String(), "use_case=create-plan")
	assert.Contains(t, buf.String(), "success=true")
}

func TestObserve_CapturesNamedError(t *testing.T) {
	obs := &recordingObserver{}
	run := func() (err error) {
		defer observe(context.Background(), obs, "op", time.Now(), &err, nil)
		return ErrForbidden
	}

	_ = run()

	assert.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
	assert.ErrorIs(t, obs.events[0].Err, ErrForbidden)
}
