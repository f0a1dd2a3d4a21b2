// Package framework contains the result-recording infrastructure of the test client, independent
// of what is being tested.
//
// The general model is:
//
// 1. A Recorder runs named steps. Each step is similar to a subtest of Go's testing.T, except that
// it does not make assertions: it records exactly one Outcome (PASS, FAIL, or INFO) describing what
// happened, optionally with a payload that was decoded from a server response.
//
// 2. Outcomes are accumulated in execution order in Results, and are reported as they happen to an
// OutcomeLogger, such as ConsoleOutcomeLogger.
//
// 3. Each step has its own debug logger. Whatever is written to it is captured and attached to the
// step's outcome, so that it can be shown only for steps that failed.
//
// The domain-specific code that knows what requests to send is in the harness package.
package framework
