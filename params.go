package main

import (
	"time"

	"github.com/github-mcp-http/mcp-test-client/config"
	"github.com/github-mcp-http/mcp-test-client/framework"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type commandParams struct {
	configFile     string
	clientName     string
	clientVersion  string
	idleTimeout    time.Duration
	requestTimeout time.Duration
	filters        framework.RegexFilters
	debug          bool
	debugAll       bool
	noColor        bool
}

func (c *commandParams) addFlags(fs *pflag.FlagSet) {
	defaults := config.Default()
	fs.StringVar(&c.configFile, "config", "", "YAML file with settings for the test run")
	fs.StringVar(&c.clientName, "client-name", defaults.Client.Name, "client name sent to the connect endpoint")
	fs.StringVar(&c.clientVersion, "client-version", defaults.Client.Version, "client version sent to the connect endpoint")
	fs.DurationVar(&c.idleTimeout, "idle-timeout", defaults.IdleTimeout, "how long to wait for data on the event stream")
	fs.DurationVar(&c.requestTimeout, "request-timeout", defaults.RequestTimeout, "timeout for each non-streaming request")
	fs.BoolVar(&c.debug, "debug", false, "show request/response details for failed steps")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show request/response details for all steps")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

// addFilterFlags adds the step filters, which only apply to the full suite.
func (c *commandParams) addFilterFlags(fs *pflag.FlagSet) {
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select steps to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select steps not to run")
}

// resolve builds the settings for a run: defaults, then the config file if any, then flags that
// were explicitly set, then the positional server URL.
func (c *commandParams) resolve(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if c.configFile != "" {
		loaded, err := config.Load(c.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("client-name") {
		cfg.Client.Name = c.clientName
	}
	if flags.Changed("client-version") {
		cfg.Client.Version = c.clientVersion
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout = c.idleTimeout
	}
	if flags.Changed("request-timeout") {
		cfg.RequestTimeout = c.requestTimeout
	}
	if len(args) > 0 {
		cfg.ServerURL = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (c *commandParams) consoleLogger(cmd *cobra.Command) framework.ConsoleOutcomeLogger {
	return framework.ConsoleOutcomeLogger{
		Out:                  cmd.OutOrStdout(),
		NoColor:              c.noColor,
		DebugOutputOnFailure: c.debug || c.debugAll,
		DebugOutputOnSuccess: c.debugAll,
	}
}
