package framework

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Recorder runs steps and accumulates their outcomes.
type Recorder struct {
	results       Results
	outcomeLogger OutcomeLogger
	filter        Filter
	debugLogger   Logger
	now           func() time.Time
}

// Step is passed to the action of each step. An action reports what happened by calling Pass,
// Fail, or Info; only the first of those calls counts.
type Step struct {
	name        string
	debugLogger CapturingLogger
	outcome     *Outcome
	now         func() time.Time
}

// NewRecorder creates a Recorder. Any of the parameters may be nil. Messages written to a step's
// debug logger are also forwarded to debugLogger if it is non-nil.
func NewRecorder(filter Filter, outcomeLogger OutcomeLogger, debugLogger Logger) *Recorder {
	if outcomeLogger == nil {
		outcomeLogger = NullOutcomeLogger()
	}
	return &Recorder{
		outcomeLogger: outcomeLogger,
		filter:        filter,
		debugLogger:   debugLogger,
		now:           time.Now,
	}
}

// Results returns a copy of the outcomes recorded so far.
func (r *Recorder) Results() Results {
	return Results{Outcomes: append([]Outcome(nil), r.results.Outcomes...)}
}

// Run runs a step, unless it is excluded by the filter. It returns false if the step was skipped.
//
// A step always produces exactly one outcome. If the action panics or returns without reporting
// anything, the outcome is a failure.
func (r *Recorder) Run(name string, action func(*Step)) bool {
	if r.filter != nil && !r.filter(name) {
		r.outcomeLogger.StepSkipped(name, "excluded by filter parameters")
		return false
	}
	s := &Step{name: name, now: r.now}
	if r.debugLogger != nil {
		s.debugLogger.forward = PrefixedLogger(r.debugLogger, "["+name+"] ")
	}
	s.run(action)

	outcome := *s.outcome
	outcome.DebugOutput = s.debugLogger.Output()
	r.results.Outcomes = append(r.results.Outcomes, outcome)
	r.outcomeLogger.OutcomeRecorded(outcome)
	return true
}

func (s *Step) run(action func(*Step)) {
	defer func() {
		if r := recover(); r != nil {
			s.Debug("unexpected panic in step: %+v\n%s", r, string(debug.Stack()))
			s.Fail(fmt.Sprintf("unexpected panic in step: %+v", r), NoPayload())
		}
		if s.outcome == nil {
			s.Fail("step finished with no outcome", NoPayload())
		}
	}()
	action(s)
}

func (s *Step) Name() string {
	return s.name
}

func (s *Step) Pass(message string, payload Decoded) {
	s.record(StatusPass, message, payload)
}

func (s *Step) Fail(message string, payload Decoded) {
	s.record(StatusFail, message, payload)
}

func (s *Step) Info(message string, payload Decoded) {
	s.record(StatusInfo, message, payload)
}

// FailWithError records a failure whose message is the error text. The payload defaults to the
// same text so that the failure always carries something to display.
func (s *Step) FailWithError(err error, payload Decoded) {
	if payload.IsEmpty() {
		payload = Raw(err.Error())
	}
	s.Fail(err.Error(), payload)
}

// Status returns the status reported so far, if any.
func (s *Step) Status() (Status, bool) {
	if s.outcome == nil {
		return "", false
	}
	return s.outcome.Status, true
}

func (s *Step) Debug(message string, args ...interface{}) {
	s.debugLogger.Printf(message, args...)
}

func (s *Step) DebugLogger() Logger {
	return &s.debugLogger
}

func (s *Step) record(status Status, message string, payload Decoded) {
	if s.outcome != nil {
		s.Debug("ignoring additional %s outcome: %s", status, message)
		return
	}
	s.outcome = &Outcome{
		Test:    s.name,
		Status:  status,
		Message: message,
		Payload: payload,
		Time:    s.now(),
	}
}
