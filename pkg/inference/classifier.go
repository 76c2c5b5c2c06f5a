// Package inference provides clients for the remote model endpoints: the
// image classifier and the treatment recommender. Both share one strict
// result contract: any non-2xx response or a body whose status field is not
// "success" is a failure.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/jsonutil"
)

// StatusSuccess is the status value the model endpoints return on success.
const StatusSuccess = "success"

// DefaultTimeout is the maximum time to wait for a model endpoint response.
const DefaultTimeout = 60 * time.Second

// Diagnosis is the normalized result of one classification call.
type Diagnosis struct {
	Status         string  `json:"status"`
	PredictedClass string  `json:"predicted_class"`
	Confidence     float64 `json:"confidence"`
}

// rawDiagnosis tolerates loose field types in the classifier response;
// confidence arrives as either a JSON number or a quoted string.
type rawDiagnosis struct {
	Status         string          `json:"status"`
	PredictedClass string          `json:"predicted_class"`
	Confidence     json.RawMessage `json:"confidence"`
}

// ClassifierClient calls the remote image-classification endpoint.
type ClassifierClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClassifierClient creates a classifier client for the given base URL.
func NewClassifierClient(baseURL string, logger *zap.Logger) *ClassifierClient {
	return &ClassifierClient{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: baseURL,
		logger:  logger.Named("classifier"),
	}
}

// Classify uploads an image as multipart form data (field "image") to the
// /predict endpoint and returns the normalized diagnosis.
func (c *ClassifierClient) Classify(ctx context.Context, filename string, image io.Reader) (*Diagnosis, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("Classifying image",
		zap.String("filename", filename),
		zap.Int("payload_bytes", body.Len()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Classifier returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var raw rawDiagnosis
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	if raw.Status != StatusSuccess {
		return nil, fmt.Errorf("classification failed with status %q", raw.Status)
	}

	diagnosis := Diagnosis{
		Status:         raw.Status,
		PredictedClass: raw.PredictedClass,
		Confidence:     jsonutil.FlexibleFloatValue(raw.Confidence),
	}

	c.logger.Info("Classification completed",
		zap.String("predicted_class", diagnosis.PredictedClass),
		zap.Float64("confidence", diagnosis.Confidence),
		zap.Duration("elapsed", time.Since(start)))

	return &diagnosis, nil
}
