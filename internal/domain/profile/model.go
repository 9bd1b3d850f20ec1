package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/schema"
)

// Profile is the caller's own practitioner record. Identity fields (id,
// email, role) come from the identity provider and are never writable
// through the API.
type Profile struct {
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	FirstName  *string   `json:"firstName,omitempty"`
	LastName   *string   `json:"lastName,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Department *string   `json:"department,omitempty"`
	Specialty  *string   `json:"specialty,omitempty"`
	AvatarURL  *string   `json:"avatarUrl,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UpdateShape declares the PUT /profile body. Anything outside this
// allow-list is dropped before the update is applied.
func UpdateShape() *schema.Shape {
	return &schema.Shape{Fields: []schema.Field{
		{Name: "firstName", Type: schema.String, MaxLen: 100},
		{Name: "lastName", Type: schema.String, MaxLen: 100},
		{Name: "phone", Type: schema.String, MaxLen: 32},
		{Name: "department", Type: schema.String, MaxLen: 100},
		{Name: "specialty", Type: schema.String, MaxLen: 100},
		{Name: "avatarUrl", Type: schema.String, MaxLen: 500},
	}}
}
