package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/career-compass/adapters/cache"
	"github.com/khoahotran/career-compass/internal/application/service"
	authUC "github.com/khoahotran/career-compass/internal/application/usecase/auth"
	careerUC "github.com/khoahotran/career-compass/internal/application/usecase/career"
	profileUC "github.com/khoahotran/career-compass/internal/application/usecase/profile"
	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/auth"
	"github.com/khoahotran/career-compass/pkg/logger"
)

// In-memory stores standing in for Postgres.

type memStore struct {
	mu       sync.Mutex
	users    map[string]*user.User
	profiles map[uuid.UUID]*profile.Profile
	analyses map[uuid.UUID][]*analysis.CareerAnalysis
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*user.User{},
		profiles: map[uuid.UUID]*profile.Profile{},
		analyses: map[uuid.UUID][]*analysis.CareerAnalysis{},
	}
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) CreateWithProfile(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.Email]; exists {
		return apperror.NewConflict("user", "Email already registered", nil)
	}
	r.users[u.Email] = u
	r.profiles[u.ID] = profile.NewEmpty(u.ID, time.Now())
	return nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

type memProfileRepo struct{ *memStore }

func (r memProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.mu.Lock()
	if _, ok := r.profiles[userID]; !ok {
		r.profiles[userID] = profile.NewEmpty(userID, time.Now())
	}
	r.mu.Unlock()
	return r.GetByUserID(ctx, userID)
}

func (r memProfileRepo) Update(_ context.Context, userID uuid.UUID, fn profile.MutateFunc) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = profile.NewEmpty(userID, time.Now())
	}
	cp := *p
	if err := fn(&cp); err != nil {
		return nil, err
	}
	cp.UpdatedAt = time.Now()
	r.profiles[userID] = &cp
	return &cp, nil
}

func (r memProfileRepo) SetCVArchiveURL(_ context.Context, userID uuid.UUID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return profile.ErrProfileNotFound
	}
	p.CVArchiveURL = &url
	return nil
}

type memAnalysisRepo struct{ *memStore }

func (r memAnalysisRepo) Save(_ context.Context, a *analysis.CareerAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.UserID] = append([]*analysis.CareerAnalysis{a}, r.analyses[a.UserID]...)
	return nil
}

func (r memAnalysisRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*analysis.CareerAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*analysis.CareerAnalysis{}, r.analyses[userID]...), nil
}

func (r memAnalysisRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.analyses[userID])), nil
}

type stubParser struct{}

func (stubParser) ExtractText(_ context.Context, pdfBase64 string) (string, error) {
	if pdfBase64 == "bad" {
		return "", apperror.NewInvalidInput("Error parsing PDF: not a PDF document", nil)
	}
	return "Five years of Go backend work", nil
}

type stubAdvisors struct{}

func (stubAdvisors) ForAPIKey(apiKey string) service.CareerAdvisor { return stubAdvisor{key: apiKey} }

type stubAdvisor struct{ key string }

func (a stubAdvisor) AnalyzeCareerPaths(_ context.Context, p analysis.ProfileSnapshot) ([]analysis.CareerPath, error) {
	if a.key == "revoked" {
		return nil, apperror.NewUnauthorized("Invalid Gemini API key", nil)
	}
	return []analysis.CareerPath{{
		CareerPath:        "Backend Engineer",
		SuitabilityReason: p.Skills,
		RequiredSkills:    []string{"Go"},
		Roadmap:           []analysis.RoadmapStep{{Step: 1, Action: "Build", Details: "APIs"}},
	}}, nil
}

func (a stubAdvisor) SearchCareerPath(_ context.Context, _ analysis.ProfileSnapshot, query string) ([]analysis.CareerPath, error) {
	return []analysis.CareerPath{{CareerPath: query}}, nil
}

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	jwtSvc *auth.JWTService
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	store := newMemStore()
	users := memUserRepo{store}
	profiles := memProfileRepo{store}
	analyses := memAnalysisRepo{store}
	s.jwtSvc = auth.NewJWTService("router-test-secret", 30*time.Minute)

	careerUseCase := careerUC.NewCareerUseCase(profiles, analyses, stubAdvisors{},
		cache.NewRedisCache(nil, time.Minute, log), careerUC.Options{AITimeout: time.Second}, log)

	s.router = NewRouter(RouterConfig{
		AuthHandler: NewAuthHandler(
			authUC.NewRegisterUseCase(users, s.jwtSvc, log),
			authUC.NewLoginUseCase(users, s.jwtSvc, log),
			log,
		),
		ProfileHandler: NewProfileHandler(profileUC.NewProfileUseCase(profiles, stubParser{}, nil, log), log),
		CareerHandler:  NewCareerHandler(careerUseCase, log),
		AuthMiddleware: AuthMiddleware(authUC.NewAuthenticateUseCase(users, s.jwtSvc), log),
		Logger:         log,
	})
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *RouterTestSuite) decode(rr *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
}

func (s *RouterTestSuite) register(email string) string {
	rr := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": email, "password": "secret1"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var tok TokenResponse
	s.decode(rr, &tok)
	return tok.AccessToken
}

func (s *RouterTestSuite) detail(rr *httptest.ResponseRecorder) string {
	var body map[string]string
	s.decode(rr, &body)
	return body["detail"]
}

func (s *RouterTestSuite) Test_Health() {
	rr := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"status":"healthy"}`, rr.Body.String())
}

func (s *RouterTestSuite) Test_Metrics() {
	s.do(http.MethodGet, "/api/health", "", nil)
	rr := s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "http_requests_total")
}

func (s *RouterTestSuite) Test_RegisterAndLogin() {
	rr := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	s.Require().Equal(http.StatusOK, rr.Code)
	var tok TokenResponse
	s.decode(rr, &tok)
	s.Equal("bearer", tok.TokenType)
	s.Equal("ada@example.com", tok.Email)
	s.NotEmpty(tok.AccessToken)

	dup := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "ada@example.com", "password": "other"})
	s.Equal(http.StatusConflict, dup.Code)
	s.Equal("Email already registered", s.detail(dup))

	bad := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "not-an-email", "password": "x"})
	s.Equal(http.StatusBadRequest, bad.Code)

	long := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "long@example.com", "password": strings.Repeat("p", 80)})
	s.Equal(http.StatusBadRequest, long.Code)
	// 40 runes pass binding but exceed bcrypt's byte limit.
	wide := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "wide@example.com", "password": strings.Repeat("é", 40)})
	s.Equal(http.StatusBadRequest, wide.Code)

	wrong := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "nope"})
	s.Equal(http.StatusUnauthorized, wrong.Code)
	s.Equal("Bearer", wrong.Header().Get("WWW-Authenticate"))
	s.Equal("Incorrect email or password", s.detail(wrong))

	ok := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	s.Equal(http.StatusOK, ok.Code)
}

func (s *RouterTestSuite) Test_ProtectedRoutesRequireToken() {
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodPost, "/api/analyze-career"},
		{http.MethodPost, "/api/search-career"},
		{http.MethodGet, "/api/analyses"},
	} {
		s.Equal(http.StatusUnauthorized, s.do(route.method, route.path, "", nil).Code, route.path)
		s.Equal(http.StatusUnauthorized, s.do(route.method, route.path, "garbage", nil).Code, route.path)
	}

	expired, err := auth.NewJWTService("router-test-secret", time.Minute).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		GenerateToken("ghost@example.com")
	s.Require().NoError(err)
	rr := s.do(http.MethodGet, "/api/profile", expired, nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal("Could not validate credentials", s.detail(rr))
}

func (s *RouterTestSuite) Test_FullCareerFlow() {
	token := s.register("grace@example.com")

	rr := s.do(http.MethodGet, "/api/profile", token, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"name":null,"degree":null,"qualifications":null,"skills":null,"gemini_api_key":null,
		"profile_picture_base64":null,"cv_pdf_base64":null,"cv_text":null,"cv_archive_url":null}`, rr.Body.String())

	rr = s.do(http.MethodPost, "/api/analyze-career", token, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Gemini API key not set. Please update your profile with a valid API key.", s.detail(rr))

	rr = s.do(http.MethodPut, "/api/profile", token, gin.H{
		"name": "Grace", "degree": "BSc", "qualifications": "AWS", "skills": "Go", "gemini_api_key": "key",
	})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"message":"Profile updated successfully"}`, rr.Body.String())

	rr = s.do(http.MethodPost, "/api/analyze-career", token, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Profile incomplete. Please fill all required fields including CV upload.", s.detail(rr))

	rr = s.do(http.MethodPut, "/api/profile", token, gin.H{"cv_pdf_base64": "bad"})
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("Error parsing PDF: not a PDF document", s.detail(rr))

	rr = s.do(http.MethodPut, "/api/profile", token, gin.H{"cv_pdf_base64": "JVBERi0="})
	s.Require().Equal(http.StatusOK, rr.Code)

	var p ProfileResponse
	s.decode(s.do(http.MethodGet, "/api/profile", token, nil), &p)
	s.Equal("Grace", *p.Name)
	s.Equal("Five years of Go backend work", *p.CVText)

	for i := 0; i < 2; i++ {
		rr = s.do(http.MethodPost, "/api/analyze-career", token, nil)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	}
	var paths CareerPathsResponse
	s.decode(rr, &paths)
	s.Require().Len(paths.CareerPaths, 1)
	s.Equal("Backend Engineer", paths.CareerPaths[0].CareerPath)

	rr = s.do(http.MethodPost, "/api/search-career", token, gin.H{"career_query": ""})
	s.Equal(http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/api/search-career", token, gin.H{"career_query": "Data Engineer"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.decode(rr, &paths)
	s.Equal("Data Engineer", paths.CareerPaths[0].CareerPath)

	var history AnalysesResponse
	s.decode(s.do(http.MethodGet, "/api/analyses", token, nil), &history)
	s.Require().Len(history.Analyses, 2, "search results are not persisted")
	s.False(history.Analyses[0].CreatedAt.Before(history.Analyses[1].CreatedAt))

	var stored []analysis.CareerPath
	s.Require().NoError(json.Unmarshal(history.Analyses[0].Result, &stored))
	s.Equal("Backend Engineer", stored[0].CareerPath)

	other := s.register("linus@example.com")
	s.decode(s.do(http.MethodGet, "/api/analyses", other, nil), &history)
	s.Empty(history.Analyses)
}

func (s *RouterTestSuite) Test_RevokedKeyIsUnauthorized() {
	token := s.register("eve@example.com")
	rr := s.do(http.MethodPut, "/api/profile", token, gin.H{
		"name": "Eve", "degree": "BSc", "qualifications": "-", "skills": "Go",
		"gemini_api_key": "revoked", "cv_pdf_base64": "JVBERi0=",
	})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodPost, "/api/analyze-career", token, nil)
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal("Invalid Gemini API key", s.detail(rr))
}
