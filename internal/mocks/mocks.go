// Package mocks holds testify mocks for the domain repositories and service ports.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/internal/domain/user"
)

type UserRepo struct{ mock.Mock }

var _ user.Repository = (*UserRepo)(nil)

func (m *UserRepo) CreateWithProfile(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

// ProfileRepo runs Update's mutate func against the profile given to the
// expectation, so tests observe what the use case changed.
type ProfileRepo struct{ mock.Mock }

var _ profile.Repository = (*ProfileRepo)(nil)

func (m *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*profile.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*profile.Profile)
	return p, args.Error(1)
}

func (m *ProfileRepo) Update(ctx context.Context, userID uuid.UUID, fn profile.MutateFunc) (*profile.Profile, error) {
	args := m.Called(ctx, userID, fn)
	p, _ := args.Get(0).(*profile.Profile)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *ProfileRepo) SetCVArchiveURL(ctx context.Context, userID uuid.UUID, url string) error {
	return m.Called(ctx, userID, url).Error(0)
}

type AnalysisRepo struct{ mock.Mock }

var _ analysis.Repository = (*AnalysisRepo)(nil)

func (m *AnalysisRepo) Save(ctx context.Context, a *analysis.CareerAnalysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AnalysisRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*analysis.CareerAnalysis, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*analysis.CareerAnalysis)
	return list, args.Error(1)
}

func (m *AnalysisRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

type CVParser struct{ mock.Mock }

func (m *CVParser) ExtractText(ctx context.Context, pdfBase64 string) (string, error) {
	args := m.Called(ctx, pdfBase64)
	return args.String(0), args.Error(1)
}

type Publisher struct{ mock.Mock }

func (m *Publisher) PublishProfileEvent(ctx context.Context, e service.ProfileEvent) error {
	return m.Called(ctx, e).Error(0)
}

type Advisor struct{ mock.Mock }

func (m *Advisor) AnalyzeCareerPaths(ctx context.Context, p analysis.ProfileSnapshot) ([]analysis.CareerPath, error) {
	args := m.Called(ctx, p)
	paths, _ := args.Get(0).([]analysis.CareerPath)
	return paths, args.Error(1)
}

func (m *Advisor) SearchCareerPath(ctx context.Context, p analysis.ProfileSnapshot, query string) ([]analysis.CareerPath, error) {
	args := m.Called(ctx, p, query)
	paths, _ := args.Get(0).([]analysis.CareerPath)
	return paths, args.Error(1)
}

type AdvisorFactory struct{ mock.Mock }

func (m *AdvisorFactory) ForAPIKey(apiKey string) service.CareerAdvisor {
	return m.Called(apiKey).Get(0).(service.CareerAdvisor)
}

type Cache struct{ mock.Mock }

func (m *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

func (m *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

type Uploader struct{ mock.Mock }

func (m *Uploader) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	args := m.Called(ctx, file, folder, publicID)
	return args.String(0), args.Error(1)
}
