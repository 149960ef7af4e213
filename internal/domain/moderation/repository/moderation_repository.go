package repository

import (
	"time"

	"openbook_backend/internal/domain/moderation/model"

	"gorm.io/gorm"
)

type ModerationRepository interface {
	CreateReport(report *model.Report) error
	GetReportByID(id string) (*model.Report, error)
	GetReports(status string, offset, limit int) ([]model.Report, int64, error)
	UpdateReport(report *model.Report) error
	HasPendingReport(reporterID, targetType, targetID string) (bool, error)

	CreateSuspension(suspension *model.Suspension) error
	GetActiveSuspension(userID string, now time.Time) (*model.Suspension, error)
	GetSuspensionsByUser(userID string) ([]model.Suspension, error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) CreateReport(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *moderationRepository) GetReportByID(id string) (*model.Report, error) {
	var report model.Report
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *moderationRepository) GetReports(status string, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	query := r.db.Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *moderationRepository) UpdateReport(report *model.Report) error {
	return r.db.Save(report).Error
}

func (r *moderationRepository) HasPendingReport(reporterID, targetType, targetID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			reporterID, targetType, targetID, model.ReportPending).
		Count(&count).Error
	return count > 0, err
}

func (r *moderationRepository) CreateSuspension(suspension *model.Suspension) error {
	return r.db.Create(suspension).Error
}

func (r *moderationRepository) GetActiveSuspension(userID string, now time.Time) (*model.Suspension, error) {
	var suspension model.Suspension
	if err := r.db.Where("user_id = ? AND expires_at > ?", userID, now).
		Order("expires_at desc").
		First(&suspension).Error; err != nil {
		return nil, err
	}
	return &suspension, nil
}

func (r *moderationRepository) GetSuspensionsByUser(userID string) ([]model.Suspension, error) {
	var suspensions []model.Suspension
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&suspensions).Error
	return suspensions, err
}
