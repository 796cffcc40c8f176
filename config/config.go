// Package config loads the settings of the vmsim tools from the environment
// and from an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/vmsim/vm"
)

// Environment variables read by Load.
const (
	EnvPageSize  = "VMSIM_PAGE_SIZE"
	EnvNumPages  = "VMSIM_NUM_PAGES"
	EnvNumFrames = "VMSIM_NUM_FRAMES"
	EnvLogLevel  = "VMSIM_LOG_LEVEL"
	EnvPort      = "VMSIM_PORT"
	EnvTraceDB   = "VMSIM_TRACE_DB"
)

// Config holds everything needed to start a translator and its collaborators.
type Config struct {
	VM       vm.Config
	LogLevel string
	Port     int
	TraceDB  string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		VM:       vm.DefaultConfig(),
		LogLevel: "info",
	}
}

// Validate checks the settings that cannot be checked while parsing.
func (c Config) Validate() error {
	return c.VM.Validate()
}

// Load reads envFile, if it exists, and the process environment. Variables
// set in the process environment win over the file. An empty envFile skips
// the file. The result is not validated, so that callers can override it
// first.
func Load(envFile string) (Config, error) {
	values := map[string]string{}

	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	for _, key := range []string{
		EnvPageSize, EnvNumPages, EnvNumFrames, EnvLogLevel, EnvPort, EnvTraceDB,
	} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	return FromMap(values)
}

// FromMap builds a Config from variable values, starting from Default. Only
// malformed values are rejected; call Validate on the result.
func FromMap(values map[string]string) (Config, error) {
	c := Default()

	err := parseUint(values, EnvPageSize, &c.VM.PageSize)
	if err != nil {
		return Config{}, err
	}

	err = parseUint(values, EnvNumPages, &c.VM.NumPages)
	if err != nil {
		return Config{}, err
	}

	err = parseUint(values, EnvNumFrames, &c.VM.NumFrames)
	if err != nil {
		return Config{}, err
	}

	if v, ok := values[EnvPort]; ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}

		c.Port = port
	}

	if v, ok := values[EnvLogLevel]; ok && v != "" {
		c.LogLevel = v
	}

	c.TraceDB = values[EnvTraceDB]

	return c, nil
}

func parseUint(values map[string]string, key string, dst *uint64) error {
	v, ok := values[key]
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a positive integer", key, v)
	}

	*dst = n

	return nil
}
