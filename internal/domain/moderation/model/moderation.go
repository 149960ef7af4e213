package model

import (
	"time"

	baseModel "openbook_backend/pkg/model"
)

// 举报目标类型
const (
	TargetPost    = "post"
	TargetComment = "comment"
	TargetUser    = "user"
)

// 举报状态
const (
	ReportPending  = "pending"
	ReportApproved = "approved"
	ReportRejected = "rejected"
)

// 举报类别
const (
	CategorySpam       = "spam"
	CategoryHarassment = "harassment"
	CategoryIllegal    = "illegal"
	CategoryOther      = "other"
)

// Report 举报记录
type Report struct {
	baseModel.BaseModel
	ReporterID  string `gorm:"index" json:"reporterId"`
	TargetType  string `json:"targetType"` // post, comment, user
	TargetID    string `gorm:"index" json:"targetId"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `gorm:"default:'pending';index" json:"status"` // pending, approved, rejected
	ReviewerID  string `json:"reviewerId"`
}

// Suspension 用户停权记录
type Suspension struct {
	baseModel.BaseModel
	UserID    string    `gorm:"index" json:"userId"`
	ReportID  string    `json:"reportId"`
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active 停权是否仍然生效
func (s *Suspension) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
