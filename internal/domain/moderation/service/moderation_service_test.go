package service

import (
	"testing"
	"time"

	"openbook_backend/internal/domain/moderation/model"
	"openbook_backend/internal/pkg/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockModerationRepository is a mock of ModerationRepository
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) CreateReport(report *model.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockModerationRepository) GetReportByID(id string) (*model.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockModerationRepository) GetReports(status string, offset, limit int) ([]model.Report, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockModerationRepository) UpdateReport(report *model.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockModerationRepository) HasPendingReport(reporterID, targetType, targetID string) (bool, error) {
	args := m.Called(reporterID, targetType, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockModerationRepository) CreateSuspension(suspension *model.Suspension) error {
	args := m.Called(suspension)
	return args.Error(0)
}

func (m *MockModerationRepository) GetActiveSuspension(userID string, now time.Time) (*model.Suspension, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Suspension), args.Error(1)
}

func (m *MockModerationRepository) GetSuspensionsByUser(userID string) ([]model.Suspension, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.Suspension), args.Error(1)
}

// stubRemover collects removal requests without touching storage.
type stubRemover struct{}

func (stubRemover) RemoveContent(targetType, targetID string) error { return nil }

func newTestPool() *worker.WorkerPool {
	// not started, tasks stay in the queue for inspection
	return worker.NewWorkerPool(stubRemover{}, 1, 8)
}

func pendingReport(id, targetType, targetID string) *model.Report {
	report := &model.Report{
		ReporterID: "reporter",
		TargetType: targetType,
		TargetID:   targetID,
		Category:   model.CategorySpam,
		Status:     model.ReportPending,
	}
	report.ID = id
	return report
}

func TestReport(t *testing.T) {
	t.Run("Report created as pending", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		service := NewModerationService(mockRepo, newTestPool())

		mockRepo.On("HasPendingReport", "alice", model.TargetPost, "p1").Return(false, nil)
		mockRepo.On("CreateReport", mock.AnythingOfType("*model.Report")).Return(nil)

		report, err := service.Report("alice", model.TargetPost, "p1", model.CategorySpam, "spam post")

		assert.NoError(t, err)
		assert.Equal(t, model.ReportPending, report.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate pending report rejected", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		service := NewModerationService(mockRepo, newTestPool())

		mockRepo.On("HasPendingReport", "alice", model.TargetPost, "p1").Return(true, nil)

		_, err := service.Report("alice", model.TargetPost, "p1", model.CategorySpam, "")

		assert.Error(t, err)
	})

	t.Run("Invalid target type rejected", func(t *testing.T) {
		service := NewModerationService(new(MockModerationRepository), newTestPool())

		_, err := service.Report("alice", "hashtag", "h1", model.CategorySpam, "")

		assert.Error(t, err)
	})

	t.Run("Invalid category rejected", func(t *testing.T) {
		service := NewModerationService(new(MockModerationRepository), newTestPool())

		_, err := service.Report("alice", model.TargetPost, "p1", "boring", "")

		assert.Error(t, err)
	})
}

func TestDecide(t *testing.T) {
	t.Run("Rejection closes the report", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		service := NewModerationService(mockRepo, newTestPool())

		mockRepo.On("GetReportByID", "r1").Return(pendingReport("r1", model.TargetPost, "p1"), nil)
		mockRepo.On("UpdateReport", mock.AnythingOfType("*model.Report")).Return(nil)

		report, err := service.Decide("reviewer", "r1", false, 0)

		assert.NoError(t, err)
		assert.Equal(t, model.ReportRejected, report.Status)
		assert.Equal(t, "reviewer", report.ReviewerID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Approved user report creates suspension", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		service := NewModerationService(mockRepo, newTestPool())

		mockRepo.On("GetReportByID", "r1").Return(pendingReport("r1", model.TargetUser, "bob"), nil)
		mockRepo.On("UpdateReport", mock.AnythingOfType("*model.Report")).Return(nil)
		mockRepo.On("CreateSuspension", mock.MatchedBy(func(s *model.Suspension) bool {
			return s.UserID == "bob" && s.ExpiresAt.After(time.Now())
		})).Return(nil)

		report, err := service.Decide("reviewer", "r1", true, 3)

		assert.NoError(t, err)
		assert.Equal(t, model.ReportApproved, report.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Approved content report enqueues removal task", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		pool := newTestPool()
		service := NewModerationService(mockRepo, pool)

		mockRepo.On("GetReportByID", "r1").Return(pendingReport("r1", model.TargetPost, "p1"), nil)
		mockRepo.On("UpdateReport", mock.AnythingOfType("*model.Report")).Return(nil)

		_, err := service.Decide("reviewer", "r1", true, 0)

		assert.NoError(t, err)
		task := <-pool.TaskQueue
		assert.Equal(t, model.TargetPost, task.TargetType)
		assert.Equal(t, "p1", task.TargetID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Already decided report rejected", func(t *testing.T) {
		mockRepo := new(MockModerationRepository)
		service := NewModerationService(mockRepo, newTestPool())

		report := pendingReport("r1", model.TargetPost, "p1")
		report.Status = model.ReportApproved
		mockRepo.On("GetReportByID", "r1").Return(report, nil)

		_, err := service.Decide("reviewer", "r1", true, 0)

		assert.Error(t, err)
	})
}
