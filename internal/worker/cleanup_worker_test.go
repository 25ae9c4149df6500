package worker

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/domain"
)

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) CreateMany(ctx context.Context, images []domain.Image) error {
	return m.Called(ctx, images).Error(0)
}

func (m *MockImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *MockImageRepository) List(ctx context.Context, limit, offset int) ([]domain.Image, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Image), args.Get(1).(int64), args.Error(2)
}

func (m *MockImageRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockImageRepository) ListURLs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	args := m.Called(ctx, objectName, contentType, reader, size)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Remove(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *MockObjectStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestProcessObjectRemovalTask(t *testing.T) {
	ctx := context.Background()

	t.Run("removes stored objects, skips external URLs", func(t *testing.T) {
		objects := new(MockObjectStore)
		worker := NewCleanupWorker(zap.NewNop(), new(MockImageRepository), objects)

		objects.On("Remove", ctx, "captures/a.png").Return(nil)

		task, err := NewObjectRemovalTask(&ObjectRemovalPayload{URLs: []string{
			"http://store/fanfie-images/captures/a.png",
			"https://example.com/external.png",
		}})
		require.NoError(t, err)

		require.NoError(t, worker.ProcessObjectRemovalTask(ctx, task))
		objects.AssertNumberOfCalls(t, "Remove", 1)
	})

	t.Run("reports partial failure so asynq retries", func(t *testing.T) {
		objects := new(MockObjectStore)
		worker := NewCleanupWorker(zap.NewNop(), new(MockImageRepository), objects)

		objects.On("Remove", ctx, "captures/a.png").Return(nil)
		objects.On("Remove", ctx, "captures/b.png").Return(assert.AnError)

		task, err := NewObjectRemovalTask(&ObjectRemovalPayload{URLs: []string{
			"http://store/fanfie-images/captures/a.png",
			"http://store/fanfie-images/captures/b.png",
		}})
		require.NoError(t, err)

		err = worker.ProcessObjectRemovalTask(ctx, task)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to remove 1 of 2 objects")
	})
}

func TestProcessOrphanSweepTask(t *testing.T) {
	ctx := context.Background()

	t.Run("removes only unreferenced objects", func(t *testing.T) {
		imageRepo := new(MockImageRepository)
		objects := new(MockObjectStore)
		worker := NewCleanupWorker(zap.NewNop(), imageRepo, objects)

		imageRepo.On("ListURLs", ctx).Return([]string{
			"http://store/fanfie-images/captures/kept.png",
			"https://example.com/external.png",
		}, nil)
		objects.On("List", ctx).Return([]string{
			"captures/kept.png",
			"captures/orphan.png",
		}, nil)
		objects.On("Remove", ctx, "captures/orphan.png").Return(nil)

		task, err := NewOrphanSweepTask(&OrphanSweepPayload{})
		require.NoError(t, err)

		require.NoError(t, worker.ProcessOrphanSweepTask(ctx, task))
		objects.AssertNumberOfCalls(t, "Remove", 1)
		objects.AssertNotCalled(t, "Remove", ctx, "captures/kept.png")
	})

	t.Run("dry run removes nothing", func(t *testing.T) {
		imageRepo := new(MockImageRepository)
		objects := new(MockObjectStore)
		worker := NewCleanupWorker(zap.NewNop(), imageRepo, objects)

		imageRepo.On("ListURLs", ctx).Return([]string{}, nil)
		objects.On("List", ctx).Return([]string{"captures/orphan.png"}, nil)

		task, err := NewOrphanSweepTask(&OrphanSweepPayload{DryRun: true})
		require.NoError(t, err)

		require.NoError(t, worker.ProcessOrphanSweepTask(ctx, task))
		objects.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("continues past individual removal failures", func(t *testing.T) {
		imageRepo := new(MockImageRepository)
		objects := new(MockObjectStore)
		worker := NewCleanupWorker(zap.NewNop(), imageRepo, objects)

		imageRepo.On("ListURLs", ctx).Return([]string{}, nil)
		objects.On("List", ctx).Return([]string{"captures/a.png", "captures/b.png"}, nil)
		objects.On("Remove", ctx, "captures/a.png").Return(assert.AnError)
		objects.On("Remove", ctx, "captures/b.png").Return(nil)

		task, err := NewOrphanSweepTask(&OrphanSweepPayload{})
		require.NoError(t, err)

		require.NoError(t, worker.ProcessOrphanSweepTask(ctx, task))
		objects.AssertNumberOfCalls(t, "Remove", 2)
	})
}

func TestProcessOrganizationCleanupTask(t *testing.T) {
	ctx := context.Background()
	imageRepo := new(MockImageRepository)
	objects := new(MockObjectStore)
	worker := NewCleanupWorker(zap.NewNop(), imageRepo, objects)

	imageRepo.On("ListURLs", ctx).Return([]string{}, nil)
	objects.On("List", ctx).Return([]string{"captures/orphan.png"}, nil)
	objects.On("Remove", ctx, "captures/orphan.png").Return(nil)

	task, err := NewOrganizationCleanupTask(&OrganizationCleanupPayload{OrganizationID: uuid.New()})
	require.NoError(t, err)

	require.NoError(t, worker.ProcessOrganizationCleanupTask(ctx, task))
	objects.AssertExpectations(t)
}
