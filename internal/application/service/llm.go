package service

import (
	"context"

	"github.com/khoahotran/career-compass/internal/domain/analysis"
)

// CareerAdvisor is the generative-AI collaborator bound to one user's API key.
type CareerAdvisor interface {
	AnalyzeCareerPaths(ctx context.Context, p analysis.ProfileSnapshot) ([]analysis.CareerPath, error)
	SearchCareerPath(ctx context.Context, p analysis.ProfileSnapshot, query string) ([]analysis.CareerPath, error)
}

type CareerAdvisorFactory interface {
	ForAPIKey(apiKey string) CareerAdvisor
}
