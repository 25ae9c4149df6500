package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/fanfie/fanfie-api/internal/config"
)

// Enqueuer schedules cleanup tasks through asynq. It implements
// service.CleanupEnqueuer.
type Enqueuer struct {
	client *asynq.Client
	cfg    config.WorkerConfig
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client *asynq.Client, cfg config.WorkerConfig) *Enqueuer {
	return &Enqueuer{
		client: client,
		cfg:    cfg,
	}
}

// EnqueueOrganizationCleanup schedules a cleanup pass after an organization
// was deleted
func (e *Enqueuer) EnqueueOrganizationCleanup(ctx context.Context, orgID uuid.UUID) error {
	task, err := NewOrganizationCleanupTask(&OrganizationCleanupPayload{OrganizationID: orgID})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(e.cfg.QueueDefault))
	return err
}

// EnqueueObjectRemoval schedules removal of the stored objects behind the
// given URLs after the delay
func (e *Enqueuer) EnqueueObjectRemoval(ctx context.Context, urls []string, delay time.Duration) error {
	task, err := NewObjectRemovalTask(&ObjectRemovalPayload{URLs: urls})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(e.cfg.QueueLow), asynq.ProcessIn(delay))
	return err
}
