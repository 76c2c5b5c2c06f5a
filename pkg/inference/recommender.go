package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/jsonutil"
)

// RecommendationRequest is the aggregated wizard input sent to the
// recommendation endpoint.
type RecommendationRequest struct {
	PlantName           string  `json:"plant_name"`
	DiseasePercentage   float64 `json:"disease_percentage"`
	PreviousFertilizers string  `json:"previous_fertilizers"`
	Acres               float64 `json:"acres"`
	Location            string  `json:"location"`
	PredictedClass      string  `json:"predicted_class"`
}

// ScheduleEntry is one dated pesticide application from a recommendation.
type ScheduleEntry struct {
	PesticideName string    `json:"pesticide_name"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Completed     bool      `json:"completed"`
}

// Recommendation is the normalized result of one recommendation call.
type Recommendation struct {
	Status     string          `json:"status"`
	Pesticides []string        `json:"pesticides"`
	Schedules  []ScheduleEntry `json:"treatment_schedules"`
}

// RecommenderClient calls the remote treatment-recommendation endpoint.
type RecommenderClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewRecommenderClient creates a recommender client for the given base URL.
func NewRecommenderClient(baseURL string, logger *zap.Logger) *RecommenderClient {
	return &RecommenderClient{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: baseURL,
		logger:  logger.Named("recommender"),
	}
}

// rawScheduleEntry tolerates the loose field types the recommendation service
// emits (dates as numbers or strings, completed as 0/1).
type rawScheduleEntry struct {
	PesticideName json.RawMessage `json:"pesticide_name"`
	ScheduledDate json.RawMessage `json:"scheduled_date"`
	Completed     json.RawMessage `json:"completed"`
}

type rawRecommendation struct {
	Status     string             `json:"status"`
	Pesticides []string           `json:"pesticides"`
	Schedules  []rawScheduleEntry `json:"treatment_schedules"`
}

// Recommend posts the aggregated wizard input to the /recommend endpoint and
// returns the normalized pesticide list and treatment schedule.
func (c *RecommenderClient) Recommend(ctx context.Context, request *RecommendationRequest) (*Recommendation, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Requesting recommendations",
		zap.String("plant_name", request.PlantName),
		zap.String("predicted_class", request.PredictedClass))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call recommender: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Recommender returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("recommender returned status %d", resp.StatusCode)
	}

	var raw rawRecommendation
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recommender response: %w", err)
	}

	if raw.Status != StatusSuccess {
		return nil, fmt.Errorf("recommendation failed with status %q", raw.Status)
	}

	recommendation := &Recommendation{
		Status:     raw.Status,
		Pesticides: raw.Pesticides,
	}

	for i, entry := range raw.Schedules {
		name := jsonutil.FlexibleStringValue(entry.PesticideName)
		if name == "" {
			return nil, fmt.Errorf("schedule entry %d has no pesticide name", i)
		}

		date, err := parseScheduledDate(jsonutil.FlexibleStringValue(entry.ScheduledDate))
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}

		recommendation.Schedules = append(recommendation.Schedules, ScheduleEntry{
			PesticideName: name,
			ScheduledDate: date,
			Completed:     jsonutil.FlexibleBoolValue(entry.Completed),
		})
	}

	c.logger.Info("Recommendation completed",
		zap.Int("pesticides", len(recommendation.Pesticides)),
		zap.Int("schedules", len(recommendation.Schedules)),
		zap.Duration("elapsed", time.Since(start)))

	return recommendation, nil
}

// parseScheduledDate accepts the date formats the recommendation service has
// been observed to emit.
func parseScheduledDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing scheduled date")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized scheduled date %q", value)
}
