package rallysim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// seedFleet registers every generated team, driver, and car with the
// service. Registration is sequential per entry because drivers and
// cars reference their team by name.
func seedFleet(ctx context.Context, config *Config, fleet []TeamEntry, stats *Stats) error {
	log.Printf("🏗️  Seeding %d teams with %d workers...", len(fleet), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		seeded int64
		failed int64
	)

	entryChan := make(chan TeamEntry, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for entry := range entryChan {
				select {
				case <-ctx.Done():
					return
				default:
					if err := seedSingleEntry(ctx, client, config.BaseURL, entry); err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to seed %s: %v", entry.Team.Name, err)
						}
					} else {
						atomic.AddInt64(&seeded, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(entryChan)
		for _, entry := range fleet {
			select {
			case <-ctx.Done():
				return
			case entryChan <- entry:
			}
		}
	}()

	wg.Wait()

	stats.TeamsSeeded = int(atomic.LoadInt64(&seeded))

	if failed > 0 {
		return fmt.Errorf("seeding failed for %d of %d teams", failed, len(fleet))
	}

	log.Printf("✅ Seeded %d teams", stats.TeamsSeeded)
	return nil
}

// seedSingleEntry posts one team, its driver, and its car in order.
func seedSingleEntry(ctx context.Context, client *HTTPClient, baseURL string, entry TeamEntry) error {
	if err := postCreated(ctx, client, baseURL+"/teams", entry.Team); err != nil {
		return fmt.Errorf("team: %w", err)
	}
	if err := postCreated(ctx, client, baseURL+"/drivers", entry.Driver); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	if err := postCreated(ctx, client, baseURL+"/cars", entry.Car); err != nil {
		return fmt.Errorf("car: %w", err)
	}
	return nil
}

// postCreated posts a payload and expects a 201 response.
func postCreated(ctx context.Context, client *HTTPClient, url string, body interface{}) error {
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return err
	}

	payload, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusCreated {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}

// submitRaces submits races concurrently using worker pools and returns
// the accepted race IDs.
func submitRaces(ctx context.Context, config *Config, stats *Stats) ([]string, error) {
	log.Printf("🏁 Submitting %d races with %d workers...", config.NumRaces, config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/races"

	raceIDs := make([]string, config.NumRaces)
	for i := range raceIDs {
		raceIDs[i] = uuid.New().String()
	}

	accepted := make([]string, config.NumRaces)
	var (
		submitted int64
		success   int64
		duplicate int64
		rejected  int64
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
					result := submitSingleRace(ctx, client, url, raceIDs[index])

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						accepted[index] = raceIDs[index]
						atomic.AddInt64(&success, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					}

					if config.Verbose {
						log.Printf("📊 Progress: %d/%d submitted (accepted: %d, duplicate: %d, rejected: %d)",
							atomic.LoadInt64(&submitted), config.NumRaces,
							atomic.LoadInt64(&success), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&rejected))
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < config.NumRaces; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.RacesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RacesAccepted = int(atomic.LoadInt64(&success))
	stats.RacesDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.RacesRejected = int(atomic.LoadInt64(&rejected))

	log.Printf(`✅ Race submission completed:
   Accepted: %d
   Duplicate: %d
   Rejected: %d
`, stats.RacesAccepted, stats.RacesDuplicate, stats.RacesRejected)

	valid := make([]string, 0, len(accepted))
	for _, id := range accepted {
		if id != "" {
			valid = append(valid, id)
		}
	}
	return valid, nil
}

// submitSingleRace submits a single race and classifies the response.
func submitSingleRace(ctx context.Context, client *HTTPClient, url, raceID string) string {
	resp, err := client.Post(ctx, url, map[string]string{"race_id": raceID})
	if err != nil {
		return "rejected"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "rejected"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "accepted"
		}
		return "accepted"
	case StatusOK:
		// Duplicate submission of an already known race.
		return "duplicate"
	default:
		return "rejected"
	}
}
