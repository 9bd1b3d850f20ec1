package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/schema"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patientId"`
	DoctorID  uuid.UUID  `json:"doctorId"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

var (
	Types = []string{"CONSULTATION", "FOLLOW_UP", "TREATMENT", "TELEMEDICINE", "EMERGENCY"}

	Statuses = []string{"SCHEDULED", "COMPLETED", "CANCELLED", "NO_SHOW"}
)

// DefaultStatus is applied when a create body omits status.
const DefaultStatus = "SCHEDULED"

// CreateShape declares the POST /appointments body.
func CreateShape() *schema.Shape {
	return &schema.Shape{Fields: []schema.Field{
		{Name: "patientId", Type: schema.String, Required: true},
		{Name: "doctorId", Type: schema.String, Required: true},
		{Name: "type", Type: schema.String, Required: true, Enum: Types},
		{Name: "status", Type: schema.String, Enum: Statuses},
		{Name: "startTime", Type: schema.DateTime, Required: true},
		{Name: "endTime", Type: schema.DateTime},
		{Name: "notes", Type: schema.String, MaxLen: 2000},
	}}
}

// ListShape declares GET /appointments parameters. The date range is
// mandatory: an unbounded appointment listing is never served.
func ListShape() *schema.Shape {
	return &schema.Shape{Fields: []schema.Field{
		{Name: "startDate", Type: schema.Date, Required: true},
		{Name: "endDate", Type: schema.Date, Required: true},
		{Name: "doctorId", Type: schema.String},
	}}
}

// Filter bounds an appointment listing.
type Filter struct {
	Start    time.Time
	End      time.Time
	DoctorID *uuid.UUID
}
