package archive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/pkg/logger"
)

var tracer = otel.Tracer("archive_usecase")

// ArchiveCVUseCase copies an uploaded CV to object storage and records its URL.
type ArchiveCVUseCase struct {
	profileRepo profile.Repository
	uploader    service.Uploader
	logger      logger.Logger
}

func NewArchiveCVUseCase(repo profile.Repository, uploader service.Uploader, log logger.Logger) *ArchiveCVUseCase {
	return &ArchiveCVUseCase{profileRepo: repo, uploader: uploader, logger: log}
}

func (uc *ArchiveCVUseCase) Execute(ctx context.Context, e service.ProfileEvent) error {
	ctx, span := tracer.Start(ctx, "ArchiveCV")
	defer span.End()

	log := uc.logger.With(zap.String("user_id", e.UserID.String()))
	if e.EventType != service.ProfileEventCVUploaded {
		log.Info("Ignoring profile event", zap.String("event_type", string(e.EventType)))
		return nil
	}

	p, err := uc.profileRepo.GetByUserID(ctx, e.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("Profile not found, skip.")
			return nil
		}
		span.RecordError(err)
		return fmt.Errorf("get profile failed: %w", err)
	}
	if p.CVPDFBase64 == nil || *p.CVPDFBase64 == "" {
		log.Info("Profile has no CV, skip.")
		return nil
	}

	data, err := decodePDF(*p.CVPDFBase64)
	if err != nil {
		log.Warn("Stored CV is not valid base64, skip.", zap.Error(err))
		return nil
	}

	folder := fmt.Sprintf("users/%s", e.UserID.String())
	url, err := uc.uploader.Upload(ctx, bytes.NewReader(data), folder, "cv")
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upload cv failed: %w", err)
	}

	if err := uc.profileRepo.SetCVArchiveURL(ctx, e.UserID, url); err != nil {
		span.RecordError(err)
		return fmt.Errorf("record cv archive url failed: %w", err)
	}
	log.Info("Archived CV", zap.String("url", url))
	return nil
}

func decodePDF(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
