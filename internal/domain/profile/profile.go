package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	Name                 *string   `json:"name"`
	Degree               *string   `json:"degree"`
	Qualifications       *string   `json:"qualifications"`
	Skills               *string   `json:"skills"`
	GeminiAPIKey         *string   `json:"gemini_api_key"`
	ProfilePictureBase64 *string   `json:"profile_picture_base64"`
	CVPDFBase64          *string   `json:"cv_pdf_base64"`
	CVText               *string   `json:"cv_text"`
	CVArchiveURL         *string   `json:"cv_archive_url"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Patch carries the fields a profile update explicitly sent. Nil means untouched.
// CV text has no field here: it is only ever derived from an uploaded PDF.
type Patch struct {
	Name                 *string
	Degree               *string
	Qualifications       *string
	Skills               *string
	GeminiAPIKey         *string
	ProfilePictureBase64 *string
}

func NewEmpty(userID uuid.UUID, now time.Time) *Profile {
	return &Profile{
		ID:        uuid.New(),
		UserID:    userID,
		UpdatedAt: now,
	}
}

func (p *Profile) Apply(patch Patch) {
	if patch.Name != nil {
		p.Name = patch.Name
	}
	if patch.Degree != nil {
		p.Degree = patch.Degree
	}
	if patch.Qualifications != nil {
		p.Qualifications = patch.Qualifications
	}
	if patch.Skills != nil {
		p.Skills = patch.Skills
	}
	if patch.GeminiAPIKey != nil {
		p.GeminiAPIKey = patch.GeminiAPIKey
	}
	if patch.ProfilePictureBase64 != nil {
		p.ProfilePictureBase64 = patch.ProfilePictureBase64
	}
}

// AttachCV stores an uploaded PDF together with the text extracted from it.
func (p *Profile) AttachCV(pdfBase64, text string) {
	p.CVPDFBase64 = &pdfBase64
	p.CVText = &text
	p.CVArchiveURL = nil
}

func (p *Profile) HasAPIKey() bool {
	return filled(p.GeminiAPIKey)
}

// IsComplete reports whether every field a career analysis needs is present.
func (p *Profile) IsComplete() bool {
	return filled(p.Name) && filled(p.Degree) && filled(p.Qualifications) &&
		filled(p.Skills) && filled(p.CVText)
}

func filled(s *string) bool {
	return s != nil && *s != ""
}

// MutateFunc edits a locked profile row inside the repository's transaction.
type MutateFunc func(p *Profile) error

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// GetOrCreate returns the user's profile, inserting an empty one if absent.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Update locks the row (creating it when missing), runs fn and persists the result in one transaction.
	Update(ctx context.Context, userID uuid.UUID, fn MutateFunc) (*Profile, error)
	SetCVArchiveURL(ctx context.Context, userID uuid.UUID, url string) error
}
