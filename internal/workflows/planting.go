package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// PlantingVerificationInput is the input for the planting verification workflow.
type PlantingVerificationInput struct {
	Verification domain.Verification
	ImageName    string
}

// PlantingVerificationWorkflow records a verification, marks its zone
// verified and announces it. When recording or marking fails, the completed
// steps are undone (saga compensation) and the stored photo is deleted.
func PlantingVerificationWorkflow(ctx workflow.Context, input PlantingVerificationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting planting verification workflow",
		"verificationID", input.Verification.ID, "zoneID", input.Verification.ZoneID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Record the verification
	err := workflow.ExecuteActivity(ctx, "RecordVerification", input.Verification).Get(ctx, nil)
	if err != nil {
		logger.Warn("record verification failed, compensating", "error", err)
		compensate(ctx, "DeleteImage", input.ImageName)
		return err
	}

	// Step 2: Mark the zone verified
	err = workflow.ExecuteActivity(ctx, "MarkZoneVerified", input.Verification.ZoneID).Get(ctx, nil)
	if err != nil {
		logger.Warn("mark zone verified failed, compensating", "error", err)
		compensate(ctx, "DeleteVerification", input.Verification.ID)
		compensate(ctx, "DeleteImage", input.ImageName)
		return err
	}

	// Step 3: Announce; failures here do not undo the verification
	err = workflow.ExecuteActivity(ctx, "PublishZoneVerified", input.Verification).Get(ctx, nil)
	if err != nil {
		logger.Warn("publish zone.verified failed", "error", err)
	}

	logger.Info("Planting verified", "verificationID", input.Verification.ID)
	return nil
}

// compensate runs a rollback activity on a context that survives
// cancellation of the workflow.
func compensate(ctx workflow.Context, activity string, args ...interface{}) {
	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	if err := workflow.ExecuteActivity(dctx, activity, args...).Get(dctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("compensation failed", "activity", activity, "error", err)
	}
}
