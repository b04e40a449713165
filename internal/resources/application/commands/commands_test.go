package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/darkroom/internal/resources/domain"
	sharedApplication "github.com/lenslate/darkroom/internal/shared/application"
	"github.com/lenslate/darkroom/internal/shared/infrastructure/outbox"
)

type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) Save(ctx context.Context, ledger *domain.ResourceLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *mockLedgerRepo) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.ResourceLedger, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResourceLedger), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetFailed(ctx context.Context, maxRetries, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, maxRetries, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (fakeUnitOfWork) Commit(ctx context.Context) error                   { return nil }
func (fakeUnitOfWork) Rollback(ctx context.Context) error                 { return nil }

func testLedger(t *testing.T, projectID uuid.UUID) *domain.ResourceLedger {
	t.Helper()
	ledger, err := domain.NewResourceLedger(projectID, 500)
	require.NoError(t, err)
	ledger.ClearDomainEvents()
	return ledger
}

func TestCreateLedgerHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions a ledger once per project", func(t *testing.T) {
		projectID := uuid.New()

		ledgerRepo := new(mockLedgerRepo)
		outboxRepo := new(mockOutboxRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(nil, domain.ErrLedgerNotFound)
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.ResourceLedger")).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewCreateLedgerHandler(ledgerRepo, outboxRepo, fakeUnitOfWork{})

		ledgerID, err := handler.Handle(ctx, CreateLedgerCommand{ProjectID: projectID, StorageTotal: 500})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, ledgerID)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("second creation surfaces ErrLedgerExists", func(t *testing.T) {
		projectID := uuid.New()
		existing := testLedger(t, projectID)

		ledgerRepo := new(mockLedgerRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(existing, nil)

		handler := NewCreateLedgerHandler(ledgerRepo, new(mockOutboxRepo), fakeUnitOfWork{})

		_, err := handler.Handle(ctx, CreateLedgerCommand{ProjectID: projectID})
		assert.ErrorIs(t, err, domain.ErrLedgerExists)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestEquipmentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("allocate then mark in use", func(t *testing.T) {
		projectID := uuid.New()
		ledger := testLedger(t, projectID)

		ledgerRepo := new(mockLedgerRepo)
		outboxRepo := new(mockOutboxRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewEquipmentHandler(ledgerRepo, outboxRepo, fakeUnitOfWork{}, sharedApplication.NewProjectLocks())

		require.NoError(t, handler.Allocate(ctx, AllocateEquipmentCommand{
			ProjectID: projectID, ItemRef: "camera-a7iv", Quantity: 2,
		}))
		require.NoError(t, handler.MarkInUse(ctx, MarkEquipmentCommand{
			ProjectID: projectID, ItemRef: "camera-a7iv",
		}))

		require.Len(t, ledger.Equipment(), 1)
		assert.Equal(t, domain.StateInUse, ledger.Equipment()[0].State())
	})

	t.Run("marking untracked equipment fails without saving", func(t *testing.T) {
		projectID := uuid.New()
		ledger := testLedger(t, projectID)

		ledgerRepo := new(mockLedgerRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(ledger, nil)

		handler := NewEquipmentHandler(ledgerRepo, new(mockOutboxRepo), fakeUnitOfWork{}, sharedApplication.NewProjectLocks())

		err := handler.MarkReturned(ctx, MarkEquipmentCommand{ProjectID: projectID, ItemRef: "drone"})
		assert.ErrorIs(t, err, domain.ErrNotAllocated)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestConsumeStorageHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the quota after consumption", func(t *testing.T) {
		projectID := uuid.New()
		ledger := testLedger(t, projectID)
		require.NoError(t, ledger.ConsumeStorage(480))
		ledger.ClearDomainEvents()

		ledgerRepo := new(mockLedgerRepo)
		outboxRepo := new(mockOutboxRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewConsumeStorageHandler(ledgerRepo, outboxRepo, fakeUnitOfWork{}, sharedApplication.NewProjectLocks())

		result, err := handler.Handle(ctx, ConsumeStorageCommand{ProjectID: projectID, Units: 20})
		require.NoError(t, err)
		assert.Equal(t, 500.0, result.Used)
		assert.Equal(t, 0.0, result.Remaining)
	})

	t.Run("overrun surfaces ErrStorageExceeded without saving", func(t *testing.T) {
		projectID := uuid.New()
		ledger := testLedger(t, projectID)
		require.NoError(t, ledger.ConsumeStorage(480))
		ledger.ClearDomainEvents()

		ledgerRepo := new(mockLedgerRepo)
		ledgerRepo.On("FindByProjectID", mock.Anything, projectID).Return(ledger, nil)

		handler := NewConsumeStorageHandler(ledgerRepo, new(mockOutboxRepo), fakeUnitOfWork{}, sharedApplication.NewProjectLocks())

		_, err := handler.Handle(ctx, ConsumeStorageCommand{ProjectID: projectID, Units: 30})
		assert.ErrorIs(t, err, domain.ErrStorageExceeded)
		assert.Equal(t, 480.0, ledger.StorageUsed())
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
