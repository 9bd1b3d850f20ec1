package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create materializes an appointment from a validated, normalized body.
// Omitted status defaults to SCHEDULED.
func (s *Service) Create(ctx context.Context, body map[string]interface{}) (*Appointment, error) {
	patientID, err := parseUUIDField(body, "patientId")
	if err != nil {
		return nil, err
	}
	doctorID, err := parseUUIDField(body, "doctorId")
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Type:      body["type"].(string),
		Status:    DefaultStatus,
		StartTime: body["startTime"].(time.Time),
	}
	if status, ok := body["status"].(string); ok && status != "" {
		a.Status = status
	}
	if end, ok := body["endTime"].(time.Time); ok {
		a.EndTime = &end
	}
	if notes, ok := body["notes"].(string); ok && notes != "" {
		n := notes
		a.Notes = &n
	}

	if a.EndTime != nil && !a.EndTime.After(a.StartTime) {
		return nil, apperrors.NewValidation([]apperrors.Violation{
			{Field: "endTime", Message: "must be after startTime"},
		})
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns appointments whose start falls inside the mandatory date
// range. The end date is inclusive: the window runs to midnight after it.
func (s *Service) List(ctx context.Context, query map[string]interface{}, limit, offset int) ([]*Appointment, int, error) {
	f := Filter{
		Start: query["startDate"].(time.Time),
		End:   query["endDate"].(time.Time).AddDate(0, 0, 1),
	}
	if !f.End.After(f.Start) {
		return nil, 0, apperrors.NewValidation([]apperrors.Violation{
			{Field: "endDate", Message: "must not be before startDate"},
		})
	}
	if raw, ok := query["doctorId"].(string); ok && raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			return nil, 0, apperrors.NewValidation([]apperrors.Violation{
				{Field: "doctorId", Message: "must be a valid UUID"},
			})
		}
		f.DoctorID = &doctorID
	}
	return s.repo.List(ctx, f, limit, offset)
}

func parseUUIDField(m map[string]interface{}, field string) (uuid.UUID, error) {
	raw, _ := m[field].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation([]apperrors.Violation{
			{Field: field, Message: "must be a valid UUID"},
		})
	}
	return id, nil
}
