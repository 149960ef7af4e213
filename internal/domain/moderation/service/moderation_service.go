package service

import (
	"errors"
	"time"

	"openbook_backend/internal/domain/moderation/model"
	"openbook_backend/internal/domain/moderation/repository"
	"openbook_backend/internal/pkg/worker"
)

// 默认停权时长
const defaultSuspensionDays = 7

// ModerationService 举报与裁定服务接口
type ModerationService interface {
	Report(reporterID, targetType, targetID, category, description string) (*model.Report, error)
	GetPendingReports(page, limit int) ([]model.Report, int64, error)
	Decide(reviewerID, reportID string, approve bool, suspensionDays int) (*model.Report, error)
	GetSuspensions(userID string) ([]model.Suspension, error)
}

type moderationService struct {
	repo repository.ModerationRepository
	pool *worker.WorkerPool
}

func NewModerationService(repo repository.ModerationRepository, pool *worker.WorkerPool) ModerationService {
	return &moderationService{repo: repo, pool: pool}
}

func (s *moderationService) Report(reporterID, targetType, targetID, category, description string) (*model.Report, error) {
	switch targetType {
	case model.TargetPost, model.TargetComment, model.TargetUser:
	default:
		return nil, errors.New("invalid target type")
	}
	switch category {
	case model.CategorySpam, model.CategoryHarassment, model.CategoryIllegal, model.CategoryOther:
	default:
		return nil, errors.New("invalid report category")
	}

	// 同一举报人对同一目标只保留一条待处理举报
	pending, err := s.repo.HasPendingReport(reporterID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errors.New("report already pending for this target")
	}

	report := &model.Report{
		ReporterID:  reporterID,
		TargetType:  targetType,
		TargetID:    targetID,
		Category:    category,
		Description: description,
		Status:      model.ReportPending,
	}
	if err := s.repo.CreateReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *moderationService) GetPendingReports(page, limit int) ([]model.Report, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetReports(model.ReportPending, offset, limit)
}

// Decide 裁定举报。通过时：用户目标产生停权记录，内容目标异步软删除
func (s *moderationService) Decide(reviewerID, reportID string, approve bool, suspensionDays int) (*model.Report, error) {
	report, err := s.repo.GetReportByID(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != model.ReportPending {
		return nil, errors.New("report already decided")
	}

	report.ReviewerID = reviewerID
	if !approve {
		report.Status = model.ReportRejected
		if err := s.repo.UpdateReport(report); err != nil {
			return nil, err
		}
		return report, nil
	}

	report.Status = model.ReportApproved
	if err := s.repo.UpdateReport(report); err != nil {
		return nil, err
	}

	if report.TargetType == model.TargetUser {
		if suspensionDays <= 0 {
			suspensionDays = defaultSuspensionDays
		}
		suspension := &model.Suspension{
			UserID:    report.TargetID,
			ReportID:  report.ID,
			Reason:    report.Category,
			ExpiresAt: time.Now().AddDate(0, 0, suspensionDays),
		}
		if err := s.repo.CreateSuspension(suspension); err != nil {
			return nil, err
		}
	} else {
		s.pool.AddTask(worker.VerdictTask{
			ReportID:   report.ID,
			TargetType: report.TargetType,
			TargetID:   report.TargetID,
		})
	}
	return report, nil
}

func (s *moderationService) GetSuspensions(userID string) ([]model.Suspension, error) {
	return s.repo.GetSuspensionsByUser(userID)
}
