package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create materializes a patient from a validated, normalized body. A missing
// medical record number is generated here; uniqueness is the storage layer's
// concern and surfaces as Conflict.
func (s *Service) Create(ctx context.Context, body map[string]interface{}) (*Patient, error) {
	p := &Patient{
		FirstName:   body["firstName"].(string),
		LastName:    body["lastName"].(string),
		DateOfBirth: body["dateOfBirth"].(time.Time),
		Gender:      body["gender"].(string),
	}

	if mrn, ok := body["medicalRecordNumber"].(string); ok && mrn != "" {
		p.MedicalRecordNumber = mrn
	} else {
		p.MedicalRecordNumber = GenerateMRN(s.now())
	}

	p.CancerType = optString(body, "cancerType")
	p.CancerStage = optString(body, "cancerStage")
	p.TreatmentStatus = optString(body, "treatmentStatus")
	p.Phone = optString(body, "phone")
	p.Email = optString(body, "email")

	if raw, ok := body["assignedDoctorId"].(string); ok && raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.NewValidation([]apperrors.Violation{
				{Field: "assignedDoctorId", Message: "must be a valid UUID"},
			})
		}
		p.AssignedDoctorID = &doctorID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// List applies the enumerated filters and returns the page plus the
// total-matched count.
func (s *Service) List(ctx context.Context, query map[string]interface{}, limit, offset int) ([]*Patient, int, error) {
	f := Filter{
		Search:          strOr(query, "search"),
		CancerType:      strOr(query, "cancerType"),
		CancerStage:     strOr(query, "cancerStage"),
		TreatmentStatus: strOr(query, "treatmentStatus"),
	}
	if raw := strOr(query, "assignedDoctorId"); raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			return nil, 0, apperrors.NewValidation([]apperrors.Violation{
				{Field: "assignedDoctorId", Message: "must be a valid UUID"},
			})
		}
		f.AssignedDoctorID = &doctorID
	}
	return s.repo.List(ctx, f, limit, offset)
}

func optString(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		s := v
		return &s
	}
	return nil
}

func strOr(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
