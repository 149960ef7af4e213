package model

import (
	baseModel "openbook_backend/pkg/model"
)

// 社区隐私类型
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// 社区角色
const (
	RoleMember        = 0
	RoleModerator     = 1
	RoleAdministrator = 2
)

// Community 社区模型
type Community struct {
	baseModel.BaseModel
	Name        string `gorm:"unique" json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Privacy     string `gorm:"default:'public'" json:"privacy"` // public, private
	CreatorID   string `json:"creatorId"`
}

// Membership 社区成员关系
type Membership struct {
	baseModel.BaseModel
	CommunityID string `gorm:"index:idx_memberships_pair,unique" json:"communityId"`
	UserID      string `gorm:"index:idx_memberships_pair,unique" json:"userId"`
	Role        int    `gorm:"default:0" json:"role"` // 0=member, 1=moderator, 2=administrator
}

// IsStaff 是否为社区管理人员（版主或管理员）
func (m *Membership) IsStaff() bool {
	return m.Role == RoleModerator || m.Role == RoleAdministrator
}

// CommunityBan 社区封禁记录
type CommunityBan struct {
	baseModel.BaseModel
	CommunityID string `gorm:"index:idx_community_bans_pair,unique" json:"communityId"`
	UserID      string `gorm:"index:idx_community_bans_pair,unique" json:"userId"`
	BannedByID  string `json:"bannedById"`
	Reason      string `json:"reason"`
}
