package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

type ProfileUseCase struct {
	profileRepo profile.Repository
	cvParser    service.CVParser
	publisher   service.ProfileEventPublisher
	logger      logger.Logger
}

// NewProfileUseCase accepts a nil publisher; CV uploads then skip archiving.
func NewProfileUseCase(repo profile.Repository, parser service.CVParser, publisher service.ProfileEventPublisher, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: repo,
		cvParser:    parser,
		publisher:   publisher,
		logger:      log,
	}
}

type GetProfileInput struct {
	UserID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()

	p, err := uc.profileRepo.GetOrCreate(ctx, input.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &GetProfileOutput{Profile: p}, nil
}

type UpdateProfileInput struct {
	UserID      uuid.UUID
	Patch       profile.Patch
	CVPDFBase64 *string
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	var cvText string
	cvUploaded := input.CVPDFBase64 != nil
	if cvUploaded {
		text, err := uc.cvParser.ExtractText(ctx, *input.CVPDFBase64)
		if err != nil {
			span.RecordError(err)
			if _, ok := apperror.As(err); !ok {
				err = apperror.NewInvalidInput("Error parsing PDF: "+err.Error(), err)
			}
			return nil, err
		}
		cvText = text
	}

	p, err := uc.profileRepo.Update(ctx, input.UserID, func(p *profile.Profile) error {
		p.Apply(input.Patch)
		if cvUploaded {
			p.AttachCV(*input.CVPDFBase64, cvText)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, apperror.NewNotFound("profile", "Profile not found", err)
		}
		return nil, err
	}

	if cvUploaded {
		uc.publishCVUploaded(ctx, input.UserID)
	}
	return &UpdateProfileOutput{Profile: p}, nil
}

func (uc *ProfileUseCase) publishCVUploaded(ctx context.Context, userID uuid.UUID) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.PublishProfileEvent(ctx, service.ProfileEvent{
		EventType:  service.ProfileEventCVUploaded,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Warn("Failed to publish cv uploaded event", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
