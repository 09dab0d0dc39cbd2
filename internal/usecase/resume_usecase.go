package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/logger"
	"resume-review-backend/pkg/security"
	"resume-review-backend/pkg/security/antivirus"

	"github.com/google/uuid"
)

const maxFileNameRunes = 255

// UploadLimiter is implemented by security.UploadLimiter.
type UploadLimiter interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

type ResumeUsecaseConfig struct {
	Visibility     string
	MaxUploadBytes int64
}

type resumeUsecase struct {
	repo       domain.ResumeRepository
	store      domain.ObjectStorage
	limiter    UploadLimiter
	scanner    antivirus.Scanner
	secLog     *security.SecurityLogger
	policy     security.FilePolicy
	visibility string
	now        func() time.Time
}

func NewResumeUsecase(
	repo domain.ResumeRepository,
	store domain.ObjectStorage,
	limiter UploadLimiter,
	scanner antivirus.Scanner,
	secLog *security.SecurityLogger,
	cfg ResumeUsecaseConfig,
) domain.ResumeUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	visibility := strings.Trim(cfg.Visibility, "/")
	if visibility == "" {
		visibility = "private"
	}
	return &resumeUsecase{
		repo:       repo,
		store:      store,
		limiter:    limiter,
		scanner:    scanner,
		secLog:     secLog,
		policy:     security.FilePolicy{MaxBytes: cfg.MaxUploadBytes},
		visibility: visibility,
		now:        time.Now,
	}
}

func (u *resumeUsecase) ListMine(ctx context.Context) ([]domain.Resume, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	resumes, err := u.repo.ListByOwner(ctx, s.UserID)
	if err != nil {
		return nil, apperror.Unavailable("could not load your resumes, please retry", err)
	}
	return resumes, nil
}

func (u *resumeUsecase) ListPending(ctx context.Context) ([]domain.Resume, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	resumes, err := u.repo.ListPending(ctx)
	if err != nil {
		return nil, apperror.Unavailable("could not load the review queue, please retry", err)
	}
	return resumes, nil
}

// Upload validates the file, stores the bytes, then records the submission.
// The object is written before the row; a failed insert leaves an orphaned
// object for the sweeper, never a row without a file.
func (u *resumeUsecase) Upload(ctx context.Context, in domain.UploadInput) (*domain.Resume, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return nil, apperror.Validation("file", "a resume file is required")
	}
	if utf8.RuneCountInString(name) > maxFileNameRunes {
		return nil, apperror.Validation("file", "file name is too long")
	}

	check := u.policy.ValidateResume(name, in.Size, in.Data)
	if !check.Valid {
		u.secLog.LogUploadRejected(ctx, s.UserID, in.ClientIP, name, check.Error)
		appErr := apperror.Validation("file", check.Error)
		if check.TooLarge {
			appErr.Code = http.StatusRequestEntityTooLarge
		}
		return nil, appErr
	}

	if u.limiter != nil {
		allowed, retryAfter, err := u.limiter.AllowUpload(ctx, in.ClientIP, s.UserID)
		if err != nil {
			logger.Log.Warn("Upload limiter unavailable, allowing upload", "error", err)
		}
		if !allowed {
			u.secLog.LogRateLimitTriggered(ctx, in.ClientIP, "", "", "resume_upload")
			return nil, apperror.TooManyRequests(fmt.Sprintf("Upload limit reached. Try again in %d seconds", retryAfter))
		}
	}

	scan := u.scanner.Scan(ctx, name, in.Data)
	if scan.Infected {
		u.secLog.LogMalwareDetected(ctx, s.UserID, in.ClientIP, name, scan.ThreatName, scan.ScannerName)
		return nil, apperror.Validation("file", "file rejected by malware scan")
	}
	if scan.Error != nil {
		logger.Log.Error("Malware scan failed", "scanner", scan.ScannerName, "error", scan.Error)
		return nil, apperror.Validation("file", "file could not be scanned, please try again")
	}

	path := fmt.Sprintf("%s/%s/%d-%s", u.visibility, s.UserID, u.now().UnixMilli(), security.SanitizeFilename(name))

	if err := u.store.Put(ctx, path, security.ResumeContentType, in.Data); err != nil {
		return nil, apperror.Unavailable("could not store the file, please try again", err)
	}

	resume := &domain.Resume{
		ID:       uuid.NewString(),
		UserID:   s.UserID,
		FilePath: path,
		FileName: name,
		Status:   domain.ResumeStatusPending,
	}
	if err := u.repo.Create(ctx, resume); err != nil {
		logger.Log.Error("Resume record insert failed after upload, object orphaned", "path", path, "error", err)
		return nil, apperror.Unavailable("could not save the submission, please try again", err)
	}

	logger.Log.Info("Resume uploaded", "resume_id", resume.ID, "user_id", s.UserID, "bytes", len(in.Data))
	return resume, nil
}

func (u *resumeUsecase) ExportPending(ctx context.Context) ([]byte, string, error) {
	resumes, err := u.ListPending(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := exportPendingExcel(resumes)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	filename := fmt.Sprintf("pending-resumes-%s.xlsx", u.now().UTC().Format("20060102"))
	return data, filename, nil
}
