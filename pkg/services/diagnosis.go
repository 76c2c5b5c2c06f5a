// Package services contains the business logic of farmcare-engine, between
// the HTTP handlers and the repositories and remote-service clients.
package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/mailer"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
)

// Classifier is the slice of the classifier client the services need.
type Classifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) (*inference.Diagnosis, error)
}

// Recommender is the slice of the recommender client the services need.
type Recommender interface {
	Recommend(ctx context.Context, request *inference.RecommendationRequest) (*inference.Recommendation, error)
}

// EmailSender is the slice of the mailer client the services need.
type EmailSender interface {
	Send(ctx context.Context, request *mailer.EmailRequest) error
}

// ImageUpload describes one uploaded image before it reaches the classifier.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// DiagnosisService validates uploaded images, classifies them through the
// remote model, and persists the resulting diagnosis.
type DiagnosisService struct {
	classifier    Classifier
	diagnoses     repositories.DiagnosisRepository
	maxImageBytes int64
	logger        *zap.Logger
}

// NewDiagnosisService creates a new diagnosis service.
func NewDiagnosisService(
	classifier Classifier,
	diagnoses repositories.DiagnosisRepository,
	maxImageBytes int64,
	logger *zap.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		classifier:    classifier,
		diagnoses:     diagnoses,
		maxImageBytes: maxImageBytes,
		logger:        logger.Named("diagnosis_service"),
	}
}

// ValidateUpload rejects uploads that are not images or exceed the size limit.
// Validation happens before any bytes are sent to the classifier.
func (s *DiagnosisService) ValidateUpload(upload *ImageUpload) error {
	if upload == nil || upload.Data == nil {
		return fmt.Errorf("%w: no image provided", apperrors.ErrInvalidImage)
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return fmt.Errorf("%w: unsupported content type %q", apperrors.ErrInvalidImage, upload.ContentType)
	}
	if upload.Size <= 0 {
		return fmt.Errorf("%w: empty image", apperrors.ErrInvalidImage)
	}
	if upload.Size > s.maxImageBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", apperrors.ErrImageTooLarge, upload.Size, s.maxImageBytes)
	}
	return nil
}

// Diagnose validates the upload, classifies it, and persists one diagnosis
// row for the farmer. Nothing is persisted when classification fails.
func (s *DiagnosisService) Diagnose(ctx context.Context, farmerID uuid.UUID, upload *ImageUpload) (*models.PlantDiagnosis, error) {
	if err := s.ValidateUpload(upload); err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, upload.Filename, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("classifier returned confidence %f outside [0,1]", result.Confidence)
	}

	diagnosis := &models.PlantDiagnosis{
		FarmerID:       farmerID,
		Status:         result.Status,
		PredictedClass: result.PredictedClass,
		Confidence:     result.Confidence,
	}

	if err := s.diagnoses.Create(ctx, diagnosis); err != nil {
		return nil, fmt.Errorf("failed to persist diagnosis: %w", err)
	}

	s.logger.Info("Diagnosis recorded",
		zap.String("farmer_id", farmerID.String()),
		zap.String("predicted_class", diagnosis.PredictedClass),
		zap.Float64("confidence", diagnosis.Confidence))

	return diagnosis, nil
}
