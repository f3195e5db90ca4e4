package http

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	authUC "github.com/khoahotran/career-compass/internal/application/usecase/auth"
	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/internal/domain/profile"
)

// Auth DTOs
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
}

func ToTokenResponse(out *authUC.TokenOutput) TokenResponse {
	return TokenResponse{
		AccessToken: out.AccessToken,
		TokenType:   out.TokenType,
		Email:       out.Email,
	}
}

// Profile DTOs
type ProfileResponse struct {
	Name                 *string `json:"name"`
	Degree               *string `json:"degree"`
	Qualifications       *string `json:"qualifications"`
	Skills               *string `json:"skills"`
	GeminiAPIKey         *string `json:"gemini_api_key"`
	ProfilePictureBase64 *string `json:"profile_picture_base64"`
	CVPDFBase64          *string `json:"cv_pdf_base64"`
	CVText               *string `json:"cv_text"`
	CVArchiveURL         *string `json:"cv_archive_url"`
}

func ToProfileResponse(p *profile.Profile) ProfileResponse {
	return ProfileResponse{
		Name:                 p.Name,
		Degree:               p.Degree,
		Qualifications:       p.Qualifications,
		Skills:               p.Skills,
		GeminiAPIKey:         p.GeminiAPIKey,
		ProfilePictureBase64: p.ProfilePictureBase64,
		CVPDFBase64:          p.CVPDFBase64,
		CVText:               p.CVText,
		CVArchiveURL:         p.CVArchiveURL,
	}
}

// UpdateProfileRequest fields left out (or null) are not touched.
type UpdateProfileRequest struct {
	Name                 *string `json:"name"`
	Degree               *string `json:"degree"`
	Qualifications       *string `json:"qualifications"`
	Skills               *string `json:"skills"`
	GeminiAPIKey         *string `json:"gemini_api_key"`
	ProfilePictureBase64 *string `json:"profile_picture_base64"`
	CVPDFBase64          *string `json:"cv_pdf_base64"`
}

func (req UpdateProfileRequest) ToPatch() profile.Patch {
	return profile.Patch{
		Name:                 req.Name,
		Degree:               req.Degree,
		Qualifications:       req.Qualifications,
		Skills:               req.Skills,
		GeminiAPIKey:         req.GeminiAPIKey,
		ProfilePictureBase64: req.ProfilePictureBase64,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Career DTOs
type CareerSearchRequest struct {
	CareerQuery string `json:"career_query" binding:"required"`
}

type CareerPathsResponse struct {
	CareerPaths []analysis.CareerPath `json:"career_paths"`
}

type AnalysisDTO struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Result    json.RawMessage `json:"result"`
}

type AnalysesResponse struct {
	Analyses []AnalysisDTO `json:"analyses"`
}

func ToAnalysesResponse(list []*analysis.CareerAnalysis) AnalysesResponse {
	out := AnalysesResponse{Analyses: make([]AnalysisDTO, 0, len(list))}
	for _, a := range list {
		out.Analyses = append(out.Analyses, AnalysisDTO{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			Result:    a.Result,
		})
	}
	return out
}
