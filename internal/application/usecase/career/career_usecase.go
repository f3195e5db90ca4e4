package career

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

var tracer = otel.Tracer("career_usecase")

const (
	msgMissingAPIKey     = "Gemini API key not set. Please update your profile with a valid API key."
	msgIncompleteProfile = "Profile incomplete. Please fill all required fields including CV upload."
)

type CareerUseCase struct {
	profileRepo  profile.Repository
	analysisRepo analysis.Repository
	advisors     service.CareerAdvisorFactory
	cache        service.Cache
	aiTimeout    time.Duration
	cacheTTL     time.Duration
	logger       logger.Logger
}

type Options struct {
	AITimeout time.Duration
	CacheTTL  time.Duration
}

func NewCareerUseCase(
	profileRepo profile.Repository,
	analysisRepo analysis.Repository,
	advisors service.CareerAdvisorFactory,
	cache service.Cache,
	opts Options,
	log logger.Logger,
) *CareerUseCase {
	if opts.AITimeout <= 0 {
		opts.AITimeout = 90 * time.Second
	}
	return &CareerUseCase{
		profileRepo:  profileRepo,
		analysisRepo: analysisRepo,
		advisors:     advisors,
		cache:        cache,
		aiTimeout:    opts.AITimeout,
		cacheTTL:     opts.CacheTTL,
		logger:       log,
	}
}

// analysesCacheKey embeds the stored analysis count, so a new analysis moves
// readers to a fresh key without any invalidation step.
func analysesCacheKey(userID uuid.UUID, count int64) string {
	return "analyses:" + userID.String() + ":" + strconv.FormatInt(count, 10)
}

// readyProfile loads the profile and checks it can be sent to the AI service.
func (uc *CareerUseCase) readyProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewNotFound("profile", "Profile not found", err)
		}
		return nil, err
	}
	if !p.HasAPIKey() {
		return nil, apperror.NewInvalidInput(msgMissingAPIKey, nil)
	}
	if !p.IsComplete() {
		return nil, apperror.NewInvalidInput(msgIncompleteProfile, nil)
	}
	return p, nil
}

// wrapAIError keeps client-facing provider errors and folds everything else
// into an internal error carrying prefix.
func wrapAIError(prefix string, err error) error {
	if errors.Is(err, apperror.ErrUnauthorized) || errors.Is(err, apperror.ErrInvalidInput) {
		return err
	}
	return apperror.NewInternal(prefix+err.Error(), err)
}

type AnalyzeInput struct {
	UserID uuid.UUID
}

type CareerPathsOutput struct {
	CareerPaths []analysis.CareerPath
}

func (uc *CareerUseCase) ExecuteAnalyze(ctx context.Context, input AnalyzeInput) (*CareerPathsOutput, error) {
	ctx, span := tracer.Start(ctx, "AnalyzeCareer")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	p, err := uc.readyProfile(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	aiCtx, cancel := context.WithTimeout(ctx, uc.aiTimeout)
	defer cancel()
	paths, err := uc.advisors.ForAPIKey(*p.GeminiAPIKey).AnalyzeCareerPaths(aiCtx, analysis.SnapshotOf(p))
	if err != nil {
		span.RecordError(err)
		return nil, wrapAIError("Error analyzing career paths: ", err)
	}
	if paths == nil {
		paths = []analysis.CareerPath{}
	}

	record, err := analysis.New(input.UserID, paths, time.Now().UTC())
	if err != nil {
		return nil, wrapAIError("Error analyzing career paths: ", err)
	}
	if err := uc.analysisRepo.Save(ctx, record); err != nil {
		span.RecordError(err)
		return nil, wrapAIError("Error analyzing career paths: ", err)
	}

	span.SetAttributes(attribute.Int("career_paths", len(paths)))
	return &CareerPathsOutput{CareerPaths: paths}, nil
}

type SearchInput struct {
	UserID uuid.UUID
	Query  string
}

// ExecuteSearch asks about one named career. Results are not persisted.
func (uc *CareerUseCase) ExecuteSearch(ctx context.Context, input SearchInput) (*CareerPathsOutput, error) {
	ctx, span := tracer.Start(ctx, "SearchCareer")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, apperror.NewInvalidInput("career_query is required", nil)
	}

	p, err := uc.readyProfile(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	aiCtx, cancel := context.WithTimeout(ctx, uc.aiTimeout)
	defer cancel()
	paths, err := uc.advisors.ForAPIKey(*p.GeminiAPIKey).SearchCareerPath(aiCtx, analysis.SnapshotOf(p), query)
	if err != nil {
		span.RecordError(err)
		return nil, wrapAIError("Error searching career path: ", err)
	}
	if paths == nil {
		paths = []analysis.CareerPath{}
	}
	return &CareerPathsOutput{CareerPaths: paths}, nil
}

type ListAnalysesInput struct {
	UserID uuid.UUID
}

type ListAnalysesOutput struct {
	Analyses []*analysis.CareerAnalysis
}

func (uc *CareerUseCase) ExecuteListAnalyses(ctx context.Context, input ListAnalysesInput) (*ListAnalysesOutput, error) {
	ctx, span := tracer.Start(ctx, "ListAnalyses")
	defer span.End()

	count, err := uc.analysisRepo.CountByUser(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	key := analysesCacheKey(input.UserID, count)
	var cached []*analysis.CareerAnalysis
	hit, err := uc.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		uc.logger.Warn("Analyses cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return &ListAnalysesOutput{Analyses: cached}, nil
	}

	list, err := uc.analysisRepo.ListByUser(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.cache.SetJSON(ctx, key, list, uc.cacheTTL); err != nil {
		uc.logger.Warn("Analyses cache write failed", zap.String("key", key), zap.Error(err))
	}
	return &ListAnalysesOutput{Analyses: list}, nil
}
