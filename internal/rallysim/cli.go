package rallysim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/paddock/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "rally_sim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the rally simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Paddock Rally Simulation Tool
=============================

A concurrent tool for exercising the paddock race settlement service.
Seeds a fleet of teams, drivers, and cars, submits races, polls their
outcomes, and verifies the standings against the settled ledger.

Usage:
  go run cmd/rally-sim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -teams int
        Number of teams to seed, each with one driver and car (default 20)
  -races int
        Number of races to submit (default 10)
  -top int
        Number of standings rows to fetch (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the generated fleet (default: generated_fleet_TIMESTAMP.json)
  -log string
        Log file for run output (default: rally_sim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/rally-sim/main.go

  # Run with a larger field and more races
  go run cmd/rally-sim/main.go -teams 100 -races 50 -url http://localhost:8080

  # Run with verbose output
  go run cmd/rally-sim/main.go -verbose -races 25

  # Run with a custom log file
  go run cmd/rally-sim/main.go -races 50 -log my_run.log
`)
}
