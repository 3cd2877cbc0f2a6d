package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a local control API address in format [host]:[port]
//	-d local database path
//	-api-url remote Glide API base URL
//	-token remote API bearer token
//	-spool recording spool directory
//	-c/-config json file path with configs
//	-sync-interval periodic sync interval (e.g., "5m")
//	-workers concurrent transfer limit per sync pass
//	-request-timeout remote request timeout (e.g., "30s")
//	-log-file rotated log file path
//	-log-level minimum log level
func ParseFlags() *StructuredConfig {
	var httpAddress NetAddress
	var databaseDSN string
	var apiBaseURL string
	var apiToken string
	var spoolDir string
	var jsonConfigPath string
	var syncInterval time.Duration
	var workers int
	var requestTimeout time.Duration
	var logFile string
	var logLevel string

	flag.Var(&httpAddress, "a", "Control API net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Local database path")
	flag.StringVar(&apiBaseURL, "api-url", "", "Remote API base URL")
	flag.StringVar(&apiToken, "token", "", "Remote API bearer token")
	flag.StringVar(&spoolDir, "spool", "", "Recording spool directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")
	flag.IntVar(&workers, "workers", 0, "Concurrent transfers per sync pass")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 30s)")
	flag.StringVar(&logFile, "log-file", "", "Rotated log file path")
	flag.StringVar(&logLevel, "log-level", "", "Minimum log level")

	flag.Parse()

	return &StructuredConfig{
		API: API{
			BaseURL:        apiBaseURL,
			Token:          apiToken,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Spool: Spool{
				Dir: spoolDir,
			},
		},
		HTTP: HTTP{
			Address: httpAddress.String(),
		},
		Sync: Sync{
			Interval: syncInterval,
			Workers:  workers,
		},
		Log: Log{
			File:  logFile,
			Level: logLevel,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
