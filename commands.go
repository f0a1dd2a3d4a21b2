package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/github-mcp-http/mcp-test-client/framework"
	"github.com/github-mcp-http/mcp-test-client/harness"

	"github.com/spf13/cobra"
)

const headerRule = "============================================================"

var errTestsFailed = errors.New("some tests failed")

func newRootCommand() *cobra.Command {
	params := &commandParams{}

	rootCmd := &cobra.Command{
		Use:   "mcp-test-client [server-url]",
		Short: "Test an MCP server over its HTTP API",
		Long: `mcp-test-client checks an MCP server's health endpoint, connects a session, opens the
event stream, makes a few JSON-RPC calls, and disconnects, printing the result of each step.

If server-url is omitted, the default server is tested.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, params, args)
		},
	}
	params.addFlags(rootCmd.PersistentFlags())
	params.addFilterFlags(rootCmd.Flags())

	toolsCmd := &cobra.Command{
		Use:   "tools [server-url]",
		Short: "List the tools and resources offered by an MCP server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(cmd, params, args)
		},
	}
	rootCmd.AddCommand(toolsCmd)

	return rootCmd
}

func runSuite(cmd *cobra.Command, params *commandParams, args []string) error {
	cfg, err := params.resolve(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Starting MCP server tests")
	fmt.Fprintf(out, "Testing server: %s\n", cfg.ServerURL)
	fmt.Fprintln(out, headerRule)
	framework.PrintFilterDescription(out, params.filters)

	console := params.consoleLogger(cmd)
	opts := cfg.HarnessOptions()
	opts.Filter = params.filters.AsFilter
	if params.debugAll {
		// Stream debug output as it happens instead of dumping it after each step.
		opts.DebugLogger = log.New(out, "", log.LstdFlags)
		console.DebugOutputOnFailure = false
		console.DebugOutputOnSuccess = false
	}
	opts.OutcomeLogger = console
	opts.SummaryOutput = out
	opts.NoColor = params.noColor

	h, err := harness.New(opts)
	if err != nil {
		return err
	}
	results := h.RunAll(cmd.Context())
	if !results.OK() {
		return errTestsFailed
	}
	return nil
}

func runTools(cmd *cobra.Command, params *commandParams, args []string) error {
	cfg, err := params.resolve(cmd, args)
	if err != nil {
		return err
	}

	// Step results go to stderr so that stdout is only the catalog.
	console := params.consoleLogger(cmd)
	console.Out = cmd.ErrOrStderr()

	opts := cfg.HarnessOptions()
	opts.OutcomeLogger = console
	if params.debug || params.debugAll {
		// Stream debug output as it happens instead of dumping it after each step.
		opts.DebugLogger = log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
		console.DebugOutputOnFailure = false
		console.DebugOutputOnSuccess = false
	}

	h, err := harness.New(opts)
	if err != nil {
		return err
	}
	catalog, err := h.ListCatalog(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, section := range []struct {
		title string
		value interface{}
	}{
		{"Available tools:", catalog.Tools},
		{"Available resources:", catalog.Resources},
	} {
		data, err := json.MarshalIndent(section.value, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, section.title)
		fmt.Fprintln(out, string(data))
	}
	return nil
}
