package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/mailer"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// mockClassifier captures the last Classify call.
type mockClassifier struct {
	result      *inference.Diagnosis
	err         error
	gotFilename string
	gotImage    []byte
	calls       int
}

func (m *mockClassifier) Classify(ctx context.Context, filename string, image io.Reader) (*inference.Diagnosis, error) {
	m.calls++
	m.gotFilename = filename
	m.gotImage, _ = io.ReadAll(image)
	return m.result, m.err
}

// mockRecommender captures the last Recommend call.
type mockRecommender struct {
	result     *inference.Recommendation
	err        error
	gotRequest *inference.RecommendationRequest
	calls      int
}

func (m *mockRecommender) Recommend(ctx context.Context, request *inference.RecommendationRequest) (*inference.Recommendation, error) {
	m.calls++
	m.gotRequest = request
	return m.result, m.err
}

// mockEmailSender captures sent emails.
type mockEmailSender struct {
	err  error
	sent []*mailer.EmailRequest
}

func (m *mockEmailSender) Send(ctx context.Context, request *mailer.EmailRequest) error {
	m.sent = append(m.sent, request)
	return m.err
}

// mockFarmerRepo is an in-memory FarmerRepository.
type mockFarmerRepo struct {
	farmers map[uuid.UUID]*models.Farmer
	getErr  error
	upserts int
}

func newMockFarmerRepo() *mockFarmerRepo {
	return &mockFarmerRepo{farmers: make(map[uuid.UUID]*models.Farmer)}
}

func (m *mockFarmerRepo) Upsert(ctx context.Context, farmer *models.Farmer) error {
	m.upserts++
	if existing, ok := m.farmers[farmer.ID]; ok {
		existing.Email = farmer.Email
		return nil
	}
	cp := *farmer
	m.farmers[farmer.ID] = &cp
	return nil
}

func (m *mockFarmerRepo) Get(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	farmer, ok := m.farmers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *farmer
	return &cp, nil
}

func (m *mockFarmerRepo) UpdateProfile(ctx context.Context, farmer *models.Farmer) error {
	if _, ok := m.farmers[farmer.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *farmer
	m.farmers[farmer.ID] = &cp
	return nil
}

// mockLandRepo is an in-memory LandRepository.
type mockLandRepo struct {
	lands     map[uuid.UUID]*models.Land
	createErr error
	updateErr error
	updates   int
	deletes   int
}

func newMockLandRepo() *mockLandRepo {
	return &mockLandRepo{lands: make(map[uuid.UUID]*models.Land)}
}

func (m *mockLandRepo) Create(ctx context.Context, land *models.Land) error {
	if m.createErr != nil {
		return m.createErr
	}
	if land.ID == uuid.Nil {
		land.ID = uuid.New()
	}
	cp := *land
	m.lands[land.ID] = &cp
	return nil
}

func (m *mockLandRepo) Get(ctx context.Context, id uuid.UUID) (*models.Land, error) {
	land, ok := m.lands[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *land
	return &cp, nil
}

func (m *mockLandRepo) Update(ctx context.Context, id uuid.UUID, acres float64, location string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	land, ok := m.lands[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.updates++
	land.Acres = acres
	land.Location = location
	return nil
}

func (m *mockLandRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.lands[id]; !ok {
		return apperrors.ErrNotFound
	}
	m.deletes++
	delete(m.lands, id)
	return nil
}

func (m *mockLandRepo) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Land, error) {
	var result []*models.Land
	for _, land := range m.lands {
		if land.FarmerID == farmerID {
			cp := *land
			result = append(result, &cp)
		}
	}
	return result, nil
}

// mockPlantRepo is an in-memory PlantRepository. Land ownership comes from
// the paired mockLandRepo.
type mockPlantRepo struct {
	lands      *mockLandRepo
	plants     map[uuid.UUID]*models.Plant
	createErr  error
	reductions []float64
}

func newMockPlantRepo(lands *mockLandRepo) *mockPlantRepo {
	return &mockPlantRepo{lands: lands, plants: make(map[uuid.UUID]*models.Plant)}
}

func (m *mockPlantRepo) Create(ctx context.Context, plant *models.Plant) error {
	if m.createErr != nil {
		return m.createErr
	}
	if plant.ID == uuid.Nil {
		plant.ID = uuid.New()
	}
	cp := *plant
	m.plants[plant.ID] = &cp
	return nil
}

func (m *mockPlantRepo) Get(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	plant, ok := m.plants[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *plant
	return &cp, nil
}

func (m *mockPlantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.plants[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.plants, id)
	return nil
}

func (m *mockPlantRepo) DeleteByLand(ctx context.Context, landID uuid.UUID) error {
	for id, plant := range m.plants {
		if plant.LandID == landID {
			delete(m.plants, id)
		}
	}
	return nil
}

func (m *mockPlantRepo) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Plant, error) {
	var result []*models.Plant
	for _, plant := range m.plants {
		land, ok := m.lands.lands[plant.LandID]
		if ok && land.FarmerID == farmerID {
			cp := *plant
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockPlantRepo) ListWithLandByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.CropRecord, error) {
	plants, _ := m.ListByFarmer(ctx, farmerID)
	var records []*models.CropRecord
	for _, plant := range plants {
		land := m.lands.lands[plant.LandID]
		records = append(records, &models.CropRecord{Plant: *plant, Land: *land})
	}
	return records, nil
}

func (m *mockPlantRepo) ReduceDiseaseForFarmer(ctx context.Context, farmerID uuid.UUID, points float64) error {
	m.reductions = append(m.reductions, points)
	for _, plant := range m.plants {
		land, ok := m.lands.lands[plant.LandID]
		if ok && land.FarmerID == farmerID {
			plant.DiseasePercentage = models.ApplyTreatmentReduction(plant.DiseasePercentage)
		}
	}
	return nil
}

// mockDiagnosisRepo is an in-memory DiagnosisRepository. ListByFarmer returns
// newest first, matching the real query.
type mockDiagnosisRepo struct {
	diagnoses []*models.PlantDiagnosis
	createErr error
}

func (m *mockDiagnosisRepo) Create(ctx context.Context, diagnosis *models.PlantDiagnosis) error {
	if m.createErr != nil {
		return m.createErr
	}
	if diagnosis.ID == uuid.Nil {
		diagnosis.ID = uuid.New()
	}
	cp := *diagnosis
	m.diagnoses = append([]*models.PlantDiagnosis{&cp}, m.diagnoses...)
	return nil
}

func (m *mockDiagnosisRepo) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.PlantDiagnosis, error) {
	var result []*models.PlantDiagnosis
	for _, d := range m.diagnoses {
		if d.FarmerID == farmerID {
			cp := *d
			result = append(result, &cp)
		}
	}
	return result, nil
}

// mockScheduleRepo is an in-memory ScheduleRepository.
type mockScheduleRepo struct {
	schedules      map[uuid.UUID]*models.TreatmentSchedule
	createBatchErr error
	batches        int
	farmerDeletes  int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[uuid.UUID]*models.TreatmentSchedule)}
}

func (m *mockScheduleRepo) CreateBatch(ctx context.Context, schedules []*models.TreatmentSchedule) error {
	if m.createBatchErr != nil {
		return m.createBatchErr
	}
	m.batches++
	for _, s := range schedules {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		cp := *s
		m.schedules[s.ID] = &cp
	}
	return nil
}

func (m *mockScheduleRepo) Get(ctx context.Context, id uuid.UUID) (*models.TreatmentSchedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockScheduleRepo) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.TreatmentSchedule, error) {
	var result []*models.TreatmentSchedule
	for _, s := range m.schedules {
		if s.FarmerID == farmerID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	s, ok := m.schedules[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	s.Completed = completed
	return nil
}

func (m *mockScheduleRepo) DeleteByFarmer(ctx context.Context, farmerID uuid.UUID) error {
	m.farmerDeletes++
	for id, s := range m.schedules {
		if s.FarmerID == farmerID {
			delete(m.schedules, id)
		}
	}
	return nil
}
