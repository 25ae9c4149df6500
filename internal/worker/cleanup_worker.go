package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/service"
)

const (
	// TypeOrganizationCleanup is the task type for post-deletion organization cleanup
	TypeOrganizationCleanup = "cleanup:organization"
	// TypeObjectRemoval is the task type for deferred object removal
	TypeObjectRemoval = "cleanup:objects"
	// TypeOrphanSweep is the task type for the orphaned object sweep
	TypeOrphanSweep = "cleanup:orphan-images"
)

// OrganizationCleanupPayload is the payload for organization cleanup tasks
type OrganizationCleanupPayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
}

// NewOrganizationCleanupTask creates an organization cleanup task
func NewOrganizationCleanupTask(payload *OrganizationCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal organization cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeOrganizationCleanup, data, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute)), nil
}

// ObjectRemovalPayload is the payload for deferred object removal tasks
type ObjectRemovalPayload struct {
	URLs []string `json:"urls"`
}

// NewObjectRemovalTask creates an object removal task
func NewObjectRemovalTask(payload *ObjectRemovalPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal object removal payload: %w", err)
	}
	return asynq.NewTask(TypeObjectRemoval, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

// OrphanSweepPayload is the payload for orphan sweep tasks
type OrphanSweepPayload struct {
	DryRun bool `json:"dry_run"`
}

// NewOrphanSweepTask creates an orphan sweep task
func NewOrphanSweepTask(payload *OrphanSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal orphan sweep payload: %w", err)
	}
	return asynq.NewTask(TypeOrphanSweep, data, asynq.MaxRetry(3), asynq.Timeout(1*time.Hour)), nil
}

// CleanupWorker handles cleanup tasks
type CleanupWorker struct {
	logger    *zap.Logger
	imageRepo service.ImageRepository
	objects   service.ObjectStore
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(logger *zap.Logger, imageRepo service.ImageRepository, objects service.ObjectStore) *CleanupWorker {
	return &CleanupWorker{
		logger:    logger,
		imageRepo: imageRepo,
		objects:   objects,
	}
}

// ProcessOrganizationCleanupTask sweeps stored objects left behind after an
// organization and its projects were deleted
func (w *CleanupWorker) ProcessOrganizationCleanupTask(ctx context.Context, t *asynq.Task) error {
	var payload OrganizationCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal organization cleanup payload: %w", err)
	}

	w.logger.Info("processing organization cleanup",
		zap.String("organization_id", payload.OrganizationID.String()),
	)

	removed, err := w.sweepOrphanObjects(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to sweep objects after organization cleanup: %w", err)
	}

	w.logger.Info("organization cleanup completed",
		zap.String("organization_id", payload.OrganizationID.String()),
		zap.Int("removed_objects", removed),
	)

	return nil
}

// ProcessObjectRemovalTask removes the stored objects behind the given URLs
func (w *CleanupWorker) ProcessObjectRemovalTask(ctx context.Context, t *asynq.Task) error {
	var payload ObjectRemovalPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal object removal payload: %w", err)
	}

	w.logger.Info("processing object removal", zap.Int("urls", len(payload.URLs)))

	var failed int
	for _, url := range payload.URLs {
		objectName, ok := service.ObjectNameFromURL(url)
		if !ok {
			continue
		}
		if err := w.objects.Remove(ctx, objectName); err != nil {
			w.logger.Error("failed to remove object",
				zap.Error(err),
				zap.String("object", objectName),
			)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d objects", failed, len(payload.URLs))
	}

	w.logger.Info("object removal completed", zap.Int("removed", len(payload.URLs)))

	return nil
}

// ProcessOrphanSweepTask removes stored objects that no image record
// references anymore
func (w *CleanupWorker) ProcessOrphanSweepTask(ctx context.Context, t *asynq.Task) error {
	var payload OrphanSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal orphan sweep payload: %w", err)
	}

	w.logger.Info("processing orphan sweep", zap.Bool("dry_run", payload.DryRun))

	removed, err := w.sweepOrphanObjects(ctx, payload.DryRun)
	if err != nil {
		return err
	}

	w.logger.Info("orphan sweep completed",
		zap.Int("removed_objects", removed),
		zap.Bool("dry_run", payload.DryRun),
	)

	return nil
}

func (w *CleanupWorker) sweepOrphanObjects(ctx context.Context, dryRun bool) (int, error) {
	urls, err := w.imageRepo.ListURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list image URLs: %w", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if objectName, ok := service.ObjectNameFromURL(url); ok {
			referenced[objectName] = struct{}{}
		}
	}

	stored, err := w.objects.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored objects: %w", err)
	}

	removed := 0
	for _, objectName := range stored {
		if _, ok := referenced[objectName]; ok {
			continue
		}
		if dryRun {
			w.logger.Info("would remove orphaned object", zap.String("object", objectName))
			removed++
			continue
		}
		if err := w.objects.Remove(ctx, objectName); err != nil {
			w.logger.Error("failed to remove orphaned object",
				zap.Error(err),
				zap.String("object", objectName),
			)
			continue
		}
		removed++
	}

	return removed, nil
}
