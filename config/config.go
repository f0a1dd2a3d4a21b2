package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/url"
	"time"

	"github.com/github-mcp-http/mcp-test-client/client"
	"github.com/github-mcp-http/mcp-test-client/harness"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is the server tested when no URL is given.
const DefaultServerURL = "https://calm-benevolence-production.up.railway.app"

// Config holds the settings of a test run. It can be read from a YAML file; anything the file
// does not mention keeps its default value.
type Config struct {
	ServerURL      string        `yaml:"serverUrl"`
	Client         ClientConfig  `yaml:"client"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	RPCMethods     []string      `yaml:"rpcMethods"`
}

type ClientConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Default returns the settings used when there is no config file.
func Default() Config {
	return Config{
		ServerURL: DefaultServerURL,
		Client: ClientConfig{
			Name:    harness.DefaultClientName,
			Version: harness.DefaultClientVersion,
		},
		IdleTimeout:    harness.DefaultIdleTimeout,
		RequestTimeout: client.DefaultRequestTimeout,
		RPCMethods:     append([]string(nil), harness.DefaultRPCMethods...),
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the settings can be used for a test run.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL %q: scheme must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: no host", c.ServerURL)
	}
	if c.IdleTimeout <= 0 {
		return errors.New("idle timeout must be greater than zero")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than zero")
	}
	if c.Client.Name == "" {
		return errors.New("client name must not be empty")
	}
	return nil
}

// HarnessOptions converts the settings into harness options. Logging and output settings are
// left for the caller to fill in.
func (c Config) HarnessOptions() harness.Options {
	var methods []string
	if c.RPCMethods != nil {
		methods = make([]string, len(c.RPCMethods))
		copy(methods, c.RPCMethods)
	}
	return harness.Options{
		BaseURL:        c.ServerURL,
		ClientName:     c.Client.Name,
		ClientVersion:  c.Client.Version,
		IdleTimeout:    c.IdleTimeout,
		RequestTimeout: c.RequestTimeout,
		RPCMethods:     methods,
	}
}
