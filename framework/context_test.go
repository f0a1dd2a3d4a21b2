package framework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOutcomes struct {
	skipped  []string
	outcomes []Outcome
}

func (r *recordedOutcomes) StepSkipped(test string, reason string) {
	r.skipped = append(r.skipped, test+": "+reason)
}

func (r *recordedOutcomes) OutcomeRecorded(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func TestRunRecordsOutcome(t *testing.T) {
	logger := &recordedOutcomes{}
	r := NewRecorder(nil, logger, nil)

	ran := r.Run("a", func(s *Step) {
		assert.Equal(t, "a", s.Name())
		s.Pass("fine", Raw("body"))
	})
	assert.True(t, ran)

	results := r.Results()
	require.Len(t, results.Outcomes, 1)
	o := results.Outcomes[0]
	assert.Equal(t, "a", o.Test)
	assert.Equal(t, StatusPass, o.Status)
	assert.Equal(t, "fine", o.Message)
	assert.Equal(t, "body", o.Payload.Text())
	assert.False(t, o.Time.IsZero())
	assert.Equal(t, results.Outcomes, logger.outcomes)
}

func TestOnlyFirstOutcomeCounts(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	r.Run("a", func(s *Step) {
		s.Info("first", NoPayload())
		s.Fail("second", NoPayload())
		s.Pass("third", NoPayload())
	})

	results := r.Results()
	require.Len(t, results.Outcomes, 1)
	assert.Equal(t, StatusInfo, results.Outcomes[0].Status)
	assert.Equal(t, "first", results.Outcomes[0].Message)
	assert.Len(t, results.Outcomes[0].DebugOutput, 2)
}

func TestStepWithNoOutcomeFails(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	r.Run("a", func(s *Step) {})

	results := r.Results()
	require.Len(t, results.Outcomes, 1)
	assert.Equal(t, StatusFail, results.Outcomes[0].Status)
	assert.Equal(t, "step finished with no outcome", results.Outcomes[0].Message)
}

func TestPanicInStepFails(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	r.Run("a", func(s *Step) {
		panic("oops")
	})
	r.Run("b", func(s *Step) {
		s.Pass("ok", NoPayload())
	})

	results := r.Results()
	require.Len(t, results.Outcomes, 2)
	assert.Equal(t, StatusFail, results.Outcomes[0].Status)
	assert.Equal(t, "unexpected panic in step: oops", results.Outcomes[0].Message)
	assert.Equal(t, StatusPass, results.Outcomes[1].Status)
}

func TestFilteredStepIsSkipped(t *testing.T) {
	logger := &recordedOutcomes{}
	r := NewRecorder(func(name string) bool { return name != "b" }, logger, nil)

	called := false
	assert.True(t, r.Run("a", func(s *Step) { s.Pass("ok", NoPayload()) }))
	assert.False(t, r.Run("b", func(s *Step) { called = true }))

	assert.False(t, called)
	assert.Len(t, r.Results().Outcomes, 1)
	assert.Equal(t, []string{"b: excluded by filter parameters"}, logger.skipped)
}

func TestFailWithErrorUsesErrorTextAsDefaultPayload(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	r.Run("a", func(s *Step) {
		s.FailWithError(assert.AnError, NoPayload())
	})
	r.Run("b", func(s *Step) {
		s.FailWithError(assert.AnError, Raw("server said no"))
	})

	results := r.Results()
	assert.Equal(t, assert.AnError.Error(), results.Outcomes[0].Message)
	assert.Equal(t, assert.AnError.Error(), results.Outcomes[0].Payload.Text())
	assert.Equal(t, "server said no", results.Outcomes[1].Payload.Text())
}

func TestStepStatus(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	r.Run("a", func(s *Step) {
		_, ok := s.Status()
		assert.False(t, ok)
		s.Fail("no", NoPayload())
		status, ok := s.Status()
		assert.True(t, ok)
		assert.Equal(t, StatusFail, status)
	})
}

func TestDebugOutputIsCapturedAndForwarded(t *testing.T) {
	forwarded := &CapturingLogger{}
	r := NewRecorder(nil, nil, forwarded)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.Run("a", func(s *Step) {
		s.Debug("hello %d", 1)
		s.DebugLogger().Printf("world")
		s.Pass("ok", NoPayload())
	})

	o := r.Results().Outcomes[0]
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), o.Time)
	require.Len(t, o.DebugOutput, 2)
	assert.Equal(t, "hello 1", o.DebugOutput[0].Message)
	assert.Equal(t, "world", o.DebugOutput[1].Message)

	var messages []string
	for _, m := range forwarded.Output() {
		messages = append(messages, m.Message)
	}
	assert.Equal(t, []string{"[a] hello 1", "[a] world"}, messages)
}
