package model

import (
	baseModel "openbook_backend/pkg/model"
)

// Circle 圈子模型：用户自定义的连接分组，控制帖子可见范围
type Circle struct {
	baseModel.BaseModel
	OwnerID string `gorm:"index:idx_circles_owner_name,unique" json:"ownerId"`
	Name    string `gorm:"index:idx_circles_owner_name,unique" json:"name"`
	Color   string `json:"color"`
}

// Connection 连接模型：单向存储，双方各一行；两行都存在即为已确认的连接
type Connection struct {
	baseModel.BaseModel
	OwnerID  string   `gorm:"index:idx_connections_pair,unique" json:"ownerId"`
	TargetID string   `gorm:"index:idx_connections_pair,unique" json:"targetId"`
	Circles  []Circle `gorm:"many2many:connection_circles;" json:"circles,omitempty"`
}

// Block 拉黑模型：有向边，效果上双向生效
type Block struct {
	baseModel.BaseModel
	BlockerID string `gorm:"index:idx_blocks_pair,unique" json:"blockerId"`
	BlockedID string `gorm:"index:idx_blocks_pair,unique" json:"blockedId"`
}
