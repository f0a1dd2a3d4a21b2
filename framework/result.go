package framework

import (
	"time"
)

// Status is the result category of one step.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusInfo Status = "INFO"
)

// Outcome is the single record produced by one step.
type Outcome struct {
	Test        string
	Status      Status
	Message     string
	Payload     Decoded
	Time        time.Time
	DebugOutput CapturedOutput
}

type Results struct {
	Outcomes []Outcome
}

type Counts struct {
	Passed int
	Failed int
	Info   int
}

func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Info
}

func (r Results) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPass:
			c.Passed++
		case StatusFail:
			c.Failed++
		default:
			c.Info++
		}
	}
	return c
}

// OK is true if no outcome is a failure.
func (r Results) OK() bool {
	return r.Counts().Failed == 0
}

func (r Results) Failures() []Outcome {
	var ret []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			ret = append(ret, o)
		}
	}
	return ret
}

// Find returns the outcomes for the named step.
func (r Results) Find(test string) []Outcome {
	var ret []Outcome
	for _, o := range r.Outcomes {
		if o.Test == test {
			ret = append(ret, o)
		}
	}
	return ret
}
