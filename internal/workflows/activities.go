package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
)

// Application error types carried across the workflow boundary.
const (
	errTypeNotFound     = "NotFound"
	errTypeInvalidInput = "InvalidInput"
)

// PlantingActivities holds the activity implementations for the planting
// verification workflow.
type PlantingActivities struct {
	Zones         ports.GreenZoneRepository
	Verifications ports.VerificationRepository
	Images        ports.ImageStore
	Events        ports.EventPublisher
}

// RecordVerification persists the verification. A retry after a lost
// acknowledgement finds the row already present and succeeds.
func (a *PlantingActivities) RecordVerification(ctx context.Context, v domain.Verification) error {
	err := a.Verifications.Create(ctx, &v)
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	if err != nil {
		return activityError(fmt.Errorf("record verification %s: %w", v.ID, err))
	}
	return nil
}

// MarkZoneVerified flags the zone as verified.
func (a *PlantingActivities) MarkZoneVerified(ctx context.Context, zoneID string) error {
	if err := a.Zones.MarkVerified(ctx, zoneID); err != nil {
		return activityError(fmt.Errorf("mark zone %s verified: %w", zoneID, err))
	}
	metrics.VerificationsRecorded.Inc()
	return nil
}

// PublishZoneVerified emits the zone.verified event.
func (a *PlantingActivities) PublishZoneVerified(ctx context.Context, v domain.Verification) error {
	if a.Events == nil {
		slog.InfoContext(ctx, "zone.verified (no publisher)", "zone_id", v.ZoneID)
		return nil
	}
	return a.Events.PublishZoneVerified(ctx, &v)
}

// DeleteVerification removes a recorded verification (saga compensation).
func (a *PlantingActivities) DeleteVerification(ctx context.Context, id string) error {
	err := a.Verifications.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete verification %s: %w", id, err)
	}
	slog.InfoContext(ctx, "verification deleted (saga compensation)", "verification_id", id)
	return nil
}

// DeleteImage removes a stored verification photo (saga compensation).
func (a *PlantingActivities) DeleteImage(ctx context.Context, name string) error {
	if err := a.Images.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete image %s: %w", name, err)
	}
	slog.InfoContext(ctx, "verification image deleted (saga compensation)", "image", name)
	return nil
}

// activityError stops retries for failures another attempt cannot fix.
func activityError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeNotFound, err)
	case errors.Is(err, domain.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), errTypeInvalidInput, err)
	}
	return err
}
