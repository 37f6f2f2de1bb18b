package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// workflowTimeout bounds a run: three 30s attempts for each of three
// activities plus compensations.
const workflowTimeout = 5 * time.Minute

// Starter submits planting verification workflows.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter submitting to taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartPlantingVerification starts the workflow for v without waiting for
// it. Failures to reach Temporal wrap domain.ErrUnavailable; the photo is
// then still the caller's to clean up.
func (s *Starter) StartPlantingVerification(ctx context.Context, v *domain.Verification, imageName string) error {
	opts := client.StartWorkflowOptions{
		ID:                       "planting-verification-" + v.ID,
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: workflowTimeout,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, PlantingVerificationWorkflow, PlantingVerificationInput{
		Verification: *v,
		ImageName:    imageName,
	})
	if err != nil {
		return fmt.Errorf("%w: start workflow: %w", domain.ErrUnavailable, err)
	}
	slog.InfoContext(ctx, "planting verification workflow started",
		"workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
