package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/schema"
)

// Patient maps to the patients table.
type Patient struct {
	ID                  uuid.UUID  `json:"id"`
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	DateOfBirth         time.Time  `json:"dateOfBirth"`
	Gender              string     `json:"gender"`
	CancerType          *string    `json:"cancerType,omitempty"`
	CancerStage         *string    `json:"cancerStage,omitempty"`
	TreatmentStatus     *string    `json:"treatmentStatus,omitempty"`
	AssignedDoctorID    *uuid.UUID `json:"assignedDoctorId,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	Email               *string    `json:"email,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Canonical enum values. Input is case-folded before storage, so "female"
// and "Stage ii" submissions never reach the table unnormalized.
var (
	Genders      = []string{"MALE", "FEMALE", "OTHER"}
	CancerStages = []string{"I", "II", "III", "IV"}
)

// CreateShape declares the POST /patients body.
func CreateShape() *schema.Shape {
	return &schema.Shape{Fields: []schema.Field{
		{Name: "firstName", Type: schema.String, Required: true, MaxLen: 120},
		{Name: "lastName", Type: schema.String, Required: true, MaxLen: 120},
		{Name: "dateOfBirth", Type: schema.Date, Required: true},
		{Name: "gender", Type: schema.String, Required: true, Enum: Genders},
		{Name: "medicalRecordNumber", Type: schema.String, MaxLen: 32},
		{Name: "cancerType", Type: schema.String, MaxLen: 120},
		{Name: "cancerStage", Type: schema.String, Enum: CancerStages},
		{Name: "treatmentStatus", Type: schema.String, MaxLen: 60},
		{Name: "assignedDoctorId", Type: schema.String},
		{Name: "phone", Type: schema.String, MaxLen: 32},
		{Name: "email", Type: schema.String, MaxLen: 254},
	}}
}

// ListShape declares the GET /patients filter parameters.
func ListShape() *schema.Shape {
	return &schema.Shape{Fields: []schema.Field{
		{Name: "search", Type: schema.String, MaxLen: 120},
		{Name: "cancerType", Type: schema.String, MaxLen: 120},
		{Name: "cancerStage", Type: schema.String, Enum: CancerStages},
		{Name: "treatmentStatus", Type: schema.String, MaxLen: 60},
		{Name: "assignedDoctorId", Type: schema.String},
	}}
}

// Filter is the enumerated set of optional list filters.
type Filter struct {
	Search           string
	CancerType       string
	CancerStage      string
	TreatmentStatus  string
	AssignedDoctorID *uuid.UUID
}

// GenerateMRN builds a medical record number of the form
// PT-<year>-<6-digit suffix>, where the suffix is the low six digits of the
// creation time in unix milliseconds. Uniqueness is enforced by the storage
// unique index, not here.
func GenerateMRN(now time.Time) string {
	suffix := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("PT-%d-%06d", now.Year(), suffix)
}
