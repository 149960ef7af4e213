package repository

import (
	"errors"
	"time"

	"openbook_backend/internal/domain/moderation/model"

	"gorm.io/gorm"
)

// GormContentRemover 按裁定结果软删除内容，直接操作内容表避免跨模块依赖
type GormContentRemover struct {
	db *gorm.DB
}

func NewGormContentRemover(db *gorm.DB) *GormContentRemover {
	return &GormContentRemover{db: db}
}

func (r *GormContentRemover) RemoveContent(targetType, targetID string) error {
	now := time.Now()
	switch targetType {
	case model.TargetPost:
		return r.db.Table("posts").
			Where("id = ? AND deleted_at IS NULL", targetID).
			Update("deleted_at", now).Error
	case model.TargetComment:
		return r.db.Table("comments").
			Where("id = ? AND deleted_at IS NULL", targetID).
			Update("deleted_at", now).Error
	default:
		return errors.New("unsupported removal target: " + targetType)
	}
}
