package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
	"github.com/samirrijal/greenmap/internal/pkg/telemetry"
)

// MaxImageBytes caps verification photo uploads.
const MaxImageBytes = 5 << 20

const maxNotesLength = 500

var allowedImageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}

var allowedImageTypes = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true}

// ImageUpload is a photo received with a verification request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// VerificationService records photographic proof of planting.
type VerificationService struct {
	zones         ports.GreenZoneRepository
	verifications ports.VerificationRepository
	images        ports.ImageStore
	events        ports.EventPublisher
	workflow      ports.VerificationWorkflow
}

// NewVerificationService creates a new VerificationService. events may be nil.
func NewVerificationService(zones ports.GreenZoneRepository, verifications ports.VerificationRepository, images ports.ImageStore, events ports.EventPublisher) *VerificationService {
	return &VerificationService{zones: zones, verifications: verifications, images: images, events: events}
}

// UseWorkflow hands the steps after the photo upload to wf.
func (s *VerificationService) UseWorkflow(wf ports.VerificationWorkflow) {
	s.workflow = wf
}

// Deferred reports whether VerifyPlanting returns before the verification
// is recorded.
func (s *VerificationService) Deferred() bool {
	return s.workflow != nil
}

// VerifyPlanting stores the photo, records the verification and marks the
// zone verified. The stored photo is removed if recording fails.
func (s *VerificationService) VerifyPlanting(ctx context.Context, userID, zoneID, notes string, img *ImageUpload) (*domain.Verification, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanVerifyPlanting)
	defer span.End()

	if zoneID == "" {
		return nil, fmt.Errorf("%w: zone_id is required", domain.ErrInvalidInput)
	}
	if len(notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes cannot exceed %d characters", domain.ErrInvalidInput, maxNotesLength)
	}
	ext, err := CheckImage(img)
	if err != nil {
		return nil, err
	}

	if _, err := s.zones.GetByID(ctx, zoneID); err != nil {
		return nil, fmt.Errorf("zone %s: %w", zoneID, err)
	}

	name := ImageName(ext)
	url, err := s.images.Save(ctx, name, io.LimitReader(img.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	v := &domain.Verification{
		ID:         uuid.NewString(),
		ZoneID:     zoneID,
		ImageURL:   url,
		VerifiedBy: userID,
		Notes:      notes,
		VerifiedAt: time.Now().UTC(),
	}
	if s.workflow != nil {
		// Once started, the workflow compensates its own steps.
		if err := s.workflow.StartPlantingVerification(ctx, v, name); err != nil {
			s.discardImage(ctx, name)
			return nil, fmt.Errorf("verify planting: %w", err)
		}
		return v, nil
	}
	if err := s.verifications.Create(ctx, v); err != nil {
		s.discardImage(ctx, name)
		return nil, fmt.Errorf("record verification: %w", err)
	}
	if err := s.zones.MarkVerified(ctx, zoneID); err != nil {
		if derr := s.verifications.Delete(ctx, v.ID); derr != nil {
			slog.WarnContext(ctx, "verification rollback failed", "verification_id", v.ID, "error", derr)
		}
		s.discardImage(ctx, name)
		return nil, fmt.Errorf("mark zone verified: %w", err)
	}
	metrics.VerificationsRecorded.Inc()

	if s.events != nil {
		if err := s.events.PublishZoneVerified(ctx, v); err != nil {
			slog.WarnContext(ctx, "publish zone.verified failed", "zone_id", zoneID, "error", err)
		}
	}
	return v, nil
}

// List returns every verification, newest first.
func (s *VerificationService) List(ctx context.Context) ([]domain.Verification, error) {
	return s.verifications.List(ctx)
}

func (s *VerificationService) discardImage(ctx context.Context, name string) {
	if err := s.images.Delete(ctx, name); err != nil {
		slog.WarnContext(ctx, "orphaned verification image", "image", name, "error", err)
	}
}

// CheckImage validates an upload's presence, size, extension and content
// type and returns its lowercased extension.
func CheckImage(img *ImageUpload) (string, error) {
	if img == nil || img.Body == nil {
		return "", fmt.Errorf("%w: image file is required", domain.ErrInvalidInput)
	}
	if img.Size > MaxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d MB", domain.ErrInvalidInput, MaxImageBytes>>20)
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	ctype := strings.ToLower(strings.TrimSpace(strings.SplitN(img.ContentType, ";", 2)[0]))
	if !allowedImageExts[ext] || !allowedImageTypes[ctype] {
		return "", fmt.Errorf("%w: only image files (jpeg, jpg, png, gif) are allowed", domain.ErrInvalidInput)
	}
	return ext, nil
}

// ImageName returns a unique stored file name for a verification photo.
func ImageName(ext string) string {
	return "verification-" + uuid.NewString() + ext
}
