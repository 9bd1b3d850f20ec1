package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/oncoserve/oncoserve/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the caller's profile. Users who have never saved one still
// get a record carried by their identity alone.
func (s *Service) Get(ctx context.Context, ident *auth.Identity) (*Profile, error) {
	userID, err := uuid.Parse(ident.ID)
	if err != nil {
		userID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(ident.ID))
	}
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &Profile{UserID: userID}
		if ident.Department != "" {
			d := ident.Department
			p.Department = &d
		}
	}
	p.Email = ident.Email
	p.Role = ident.Role
	return p, nil
}

// Update applies the allow-listed body fields on top of the stored profile
// and persists the result. A field absent from the body keeps its stored
// value; identity fields are untouchable.
func (s *Service) Update(ctx context.Context, ident *auth.Identity, body map[string]interface{}) (*Profile, error) {
	p, err := s.Get(ctx, ident)
	if err != nil {
		return nil, err
	}

	applyString(body, "firstName", &p.FirstName)
	applyString(body, "lastName", &p.LastName)
	applyString(body, "phone", &p.Phone)
	applyString(body, "department", &p.Department)
	applyString(body, "specialty", &p.Specialty)
	applyString(body, "avatarUrl", &p.AvatarURL)

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// applyString sets dst when the key is present; an explicit empty string
// clears the field.
func applyString(m map[string]interface{}, key string, dst **string) {
	v, ok := m[key].(string)
	if !ok {
		return
	}
	if v == "" {
		*dst = nil
		return
	}
	s := v
	*dst = &s
}
