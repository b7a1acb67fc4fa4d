package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/paddock/internal/rallysim"
)

// Default configuration constants.
const (
	defaultNumTeams   = 20
	defaultNumRaces   = 10
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numTeams   = flag.Int("teams", defaultNumTeams, "Number of teams to seed")
		numRaces   = flag.Int("races", defaultNumRaces, "Number of races to submit")
		topN       = flag.Int("top", defaultTopN, "Number of standings rows to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for the generated fleet (default: generated_fleet_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: rally_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		rallysim.ShowHelp()
		return
	}

	// Setup logging
	if err := rallysim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create run configuration
	config := &rallysim.Config{
		BaseURL:    *baseURL,
		NumTeams:   *numTeams,
		NumRaces:   *numRaces,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	// Run the simulation
	if err := rallysim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
