package model

import (
	baseModel "openbook_backend/pkg/model"
)

// 帖子可见范围类型
const (
	ScopePublicCircle = "public_circle"
	ScopeCustomCircle = "custom_circle"
	ScopeCommunity    = "community"
)

// Post 帖子模型。可见范围在创建时确定，创建后不可变更
type Post struct {
	baseModel.BaseModel
	OwnerID         string `gorm:"index" json:"ownerId"`
	Text            string `json:"text"`
	ScopeType       string `json:"scopeType"`                   // public_circle, custom_circle, community
	CommunityID     string `gorm:"index" json:"communityId"`    // community 范围专用
	Closed          bool   `gorm:"default:false" json:"closed"` // 关闭后冻结评论和自删
	CommentsEnabled bool   `gorm:"default:true" json:"commentsEnabled"`
}

// PostCircle 帖子与圈子的关联，custom_circle 范围专用
type PostCircle struct {
	baseModel.BaseModel
	PostID   string `gorm:"index:idx_post_circles_pair,unique" json:"postId"`
	CircleID string `gorm:"index:idx_post_circles_pair,unique" json:"circleId"`
}

// Comment 评论，最多两级（顶层评论和回复）
type Comment struct {
	baseModel.BaseModel
	PostID   string `gorm:"index" json:"postId"`
	OwnerID  string `gorm:"index" json:"ownerId"`
	ParentID string `gorm:"index" json:"parentId"` // 空表示顶层评论
	Text     string `json:"text"`
}

// Reaction 表情回应，同一用户对同一目标同一表情只保留一条
type Reaction struct {
	baseModel.BaseModel
	PostID    string `gorm:"index:idx_reactions_target,unique" json:"postId"`
	CommentID string `gorm:"index:idx_reactions_target,unique" json:"commentId"` // 空表示对帖子的回应
	OwnerID   string `gorm:"index:idx_reactions_target,unique" json:"ownerId"`
	Emoji     string `gorm:"index:idx_reactions_target,unique" json:"emoji"`
}

// PostMute 帖子静音，静音后不再接收该帖的通知
type PostMute struct {
	baseModel.BaseModel
	PostID string `gorm:"index:idx_post_mutes_pair,unique" json:"postId"`
	UserID string `gorm:"index:idx_post_mutes_pair,unique" json:"userId"`
}
