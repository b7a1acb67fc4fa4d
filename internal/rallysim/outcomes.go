package rallysim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveOutcomes polls the outcome of every accepted race until it
// settles, aborts, or the poll budget runs out.
func retrieveOutcomes(ctx context.Context, config *Config, raceIDs []string, stats *Stats) ([]RaceOutcome, error) {
	log.Printf("🏆 Retrieving outcomes for %d races with %d workers...", len(raceIDs), config.Workers)

	client := newHTTPClient(config.Timeout)

	outcomes := make([]RaceOutcome, len(raceIDs))
	var (
		settled int64
		aborted int64
		failed  int64
	)

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome, err := pollSingleOutcome(ctx, client, config.BaseURL, raceIDs[index])
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get outcome for %s: %v", raceIDs[index], err)
						}
						continue
					}

					outcomes[index] = outcome
					switch outcome.Status {
					case "settled":
						atomic.AddInt64(&settled, 1)
					case "aborted":
						atomic.AddInt64(&aborted, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range raceIDs {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out empty entries (failed retrievals)
	validOutcomes := make([]RaceOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.RaceID != "" {
			validOutcomes = append(validOutcomes, outcome)
		}
	}

	stats.OutcomesSettled = int(atomic.LoadInt64(&settled))
	stats.OutcomesAborted = int(atomic.LoadInt64(&aborted))
	stats.OutcomesFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Outcome retrieval completed:
   Settled: %d
   Aborted: %d
   Failed: %d
`, stats.OutcomesSettled, stats.OutcomesAborted, stats.OutcomesFailed)

	return validOutcomes, nil
}

// pollSingleOutcome polls a single race until it leaves the pending state.
func pollSingleOutcome(ctx context.Context, client *HTTPClient, baseURL, raceID string) (RaceOutcome, error) {
	url := fmt.Sprintf("%s/races/%s", baseURL, raceID)

	for attempt := 0; attempt < SettlePollAttempts; attempt++ {
		outcome, err := fetchOutcome(ctx, client, url)
		if err != nil {
			return RaceOutcome{}, err
		}

		if outcome.Status != "pending" {
			return outcome, nil
		}

		select {
		case <-ctx.Done():
			return RaceOutcome{}, ctx.Err()
		case <-time.After(SettlePollInterval):
		}
	}

	return RaceOutcome{}, fmt.Errorf("race %s still pending after %d polls", raceID, SettlePollAttempts)
}

// fetchOutcome performs one GET on the race outcome endpoint.
func fetchOutcome(ctx context.Context, client *HTTPClient, url string) (RaceOutcome, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return RaceOutcome{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return RaceOutcome{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return RaceOutcome{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var outcome RaceOutcome
	if err := unmarshalJSON(body, &outcome); err != nil {
		return RaceOutcome{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return outcome, nil
}

// getStandings retrieves the top N standings rows.
func getStandings(ctx context.Context, config *Config, stats *Stats) ([]StandingsRow, error) {
	log.Printf("🥇 Getting top %d standings rows...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/standings?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var standings []StandingsRow
	if err := unmarshalJSON(body, &standings); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.StandingsEntries = len(standings)
	log.Printf("✅ Retrieved %d standings rows", len(standings))

	return standings, nil
}
