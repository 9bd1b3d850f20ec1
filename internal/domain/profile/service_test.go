package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/auth"
)

type mockRepo struct {
	profiles map[uuid.UUID]*Profile
}

func newMockRepo() *mockRepo {
	return &mockRepo{profiles: make(map[uuid.UUID]*Profile)}
}

func (m *mockRepo) Get(_ context.Context, userID uuid.UUID) (*Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepo) Upsert(_ context.Context, p *Profile) error {
	p.UpdatedAt = time.Now()
	clone := *p
	m.profiles[p.UserID] = &clone
	return nil
}

func testIdentity() *auth.Identity {
	return &auth.Identity{
		ID:         uuid.New().String(),
		Email:      "doc@example.com",
		Role:       "ONCOLOGIST",
		Department: "oncology",
	}
}

func TestGet_NoStoredProfile(t *testing.T) {
	svc := NewService(newMockRepo())
	ident := testIdentity()

	p, err := svc.Get(context.Background(), ident)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "doc@example.com" || p.Role != "ONCOLOGIST" {
		t.Errorf("identity fields missing: %+v", p)
	}
	if p.Department == nil || *p.Department != "oncology" {
		t.Errorf("department should default from the identity: %v", p.Department)
	}
}

func TestUpdate_AppliesAllowListedFields(t *testing.T) {
	svc := NewService(newMockRepo())
	ident := testIdentity()

	p, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"firstName": "Grace",
		"specialty": "radiation oncology",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FirstName == nil || *p.FirstName != "Grace" {
		t.Errorf("firstName = %v", p.FirstName)
	}
	if p.Specialty == nil || *p.Specialty != "radiation oncology" {
		t.Errorf("specialty = %v", p.Specialty)
	}
}

func TestUpdate_AbsentFieldsKeepStoredValues(t *testing.T) {
	svc := NewService(newMockRepo())
	ident := testIdentity()

	if _, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"firstName": "Grace",
		"phone":     "+1-555-0100",
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	p, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"lastName": "Hopper",
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if p.FirstName == nil || *p.FirstName != "Grace" {
		t.Errorf("firstName lost: %v", p.FirstName)
	}
	if p.Phone == nil || *p.Phone != "+1-555-0100" {
		t.Errorf("phone lost: %v", p.Phone)
	}
	if p.LastName == nil || *p.LastName != "Hopper" {
		t.Errorf("lastName = %v", p.LastName)
	}
}

func TestUpdate_EmptyStringClearsField(t *testing.T) {
	svc := NewService(newMockRepo())
	ident := testIdentity()

	if _, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"phone": "+1-555-0100",
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	p, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"phone": "",
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if p.Phone != nil {
		t.Errorf("phone should be cleared, got %v", *p.Phone)
	}
}

func TestUpdate_IdentityFieldsUntouchable(t *testing.T) {
	svc := NewService(newMockRepo())
	ident := testIdentity()

	// A validated body never carries these keys (the shape drops them), but
	// the service must not trust that alone.
	p, err := svc.Update(context.Background(), ident, map[string]interface{}{
		"email": "attacker@example.com",
		"role":  "ADMIN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "doc@example.com" {
		t.Errorf("email mutated: %q", p.Email)
	}
	if p.Role != "ONCOLOGIST" {
		t.Errorf("role mutated: %q", p.Role)
	}
}
