package framework

// OutcomeLogger receives each outcome as soon as it is recorded.
type OutcomeLogger interface {
	StepSkipped(test string, reason string)
	OutcomeRecorded(outcome Outcome)
}

type nullOutcomeLogger struct{}

func (n nullOutcomeLogger) StepSkipped(string, string) {}
func (n nullOutcomeLogger) OutcomeRecorded(Outcome)    {}

func NullOutcomeLogger() OutcomeLogger { return nullOutcomeLogger{} }
