// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the client and the dev server.
type Options struct {
	// ServerURL is the base URL of the capstone backend.
	ServerURL string

	// CredentialsFile is the path of the persisted credential store.
	CredentialsFile string

	// TimeoutSec is the per-request timeout in seconds. Zero disables the
	// client-side timeout and leaves the platform default.
	TimeoutSec int

	// LogLevel selects the zap log level ("debug", "info", "warn", "error").
	LogLevel string

	// Addr is the dev server's listening address (ip:port).
	Addr string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.ServerURL, "url", "http://127.0.0.1:8000", "backend base URL")
	flag.StringVar(&options.CredentialsFile, "creds", "credentials.json", "path to credential store file")
	flag.IntVar(&options.TimeoutSec, "timeout", 0, "request timeout in seconds (0 = platform default)")
	flag.StringVar(&options.LogLevel, "log", "info", "log level: debug|info|warn|error")
	flag.StringVar(&options.Addr, "a", "127.0.0.1:8000", "dev server listen address (ip:port)")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if server := os.Getenv("CAPTRACK_SERVER"); server != "" {
		options.ServerURL = server
	}
	if creds := os.Getenv("CAPTRACK_CREDENTIALS"); creds != "" {
		options.CredentialsFile = creds
	}
	if level := os.Getenv("CAPTRACK_LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if addr := os.Getenv("CAPTRACK_ADDR"); addr != "" {
		options.Addr = addr
	}

	return options
}

// Timeout converts TimeoutSec into a time.Duration.
func (o *Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSec) * time.Second
}
