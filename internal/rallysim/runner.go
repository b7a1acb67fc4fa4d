package rallysim

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/paddock/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete rally simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting paddock rally simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("teams", config.NumTeams),
		logger.Int("races", config.NumRaces),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the fleet
	fleet, err := generateFleet(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("fleet generation failed: %w", err)
	}

	// Step 3: Register teams, drivers, and cars
	if err := seedFleet(ctx, config, fleet, stats); err != nil {
		return fmt.Errorf("fleet seeding failed: %w", err)
	}

	// Step 4: Submit races concurrently
	raceIDs, err := submitRaces(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("race submission failed: %w", err)
	}

	// Step 5: Poll outcomes until every race settles
	outcomes, err := retrieveOutcomes(ctx, config, raceIDs, stats)
	if err != nil {
		return fmt.Errorf("outcome retrieval failed: %w", err)
	}

	// Step 6: Get standings
	standings, err := getStandings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("standings retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(config, outcomes, standings); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save the fleet to file
	if err := saveFleetToFile(ctx, config, fleet); err != nil {
		logger.Get().Warn(ctx, "failed to save fleet to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveFleetToFile saves the generated fleet to a JSON file.
func saveFleetToFile(ctx context.Context, config *Config, fleet []TeamEntry) error {
	if len(fleet) == 0 {
		return fmt.Errorf("no fleet to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_fleet_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write the fleet to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, entry := range fleet {
		jsonData, err := marshalJSON(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write entry %d: %w", i, err)
		}

		// Add comma except for last entry
		if i < len(fleet)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "fleet saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var settleRate, racesPerSecond float64

	if stats.RacesSubmitted > 0 {
		settleRate = float64(stats.OutcomesSettled) / float64(stats.RacesSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		racesPerSecond = float64(stats.RacesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("teamsGenerated", stats.TeamsGenerated),
		logger.Int("teamsSeeded", stats.TeamsSeeded),
		logger.Int("racesSubmitted", stats.RacesSubmitted),
		logger.Int("racesAccepted", stats.RacesAccepted),
		logger.Int("racesDuplicate", stats.RacesDuplicate),
		logger.Int("racesRejected", stats.RacesRejected),
		logger.Int("outcomesSettled", stats.OutcomesSettled),
		logger.Int("outcomesAborted", stats.OutcomesAborted),
		logger.Int("outcomesFailed", stats.OutcomesFailed),
		logger.Int("standingsEntries", stats.StandingsEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("settleRate", settleRate),
		logger.Float64("racesPerSecond", racesPerSecond))
}
