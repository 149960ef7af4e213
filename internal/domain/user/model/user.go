package model

import (
	"time"

	baseModel "openbook_backend/pkg/model"
)

// 用户角色
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// 用户状态
const (
	StatusNormal  = 0
	StatusBanned  = 1
	StatusDeleted = 2
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username    string     `gorm:"unique" json:"username"`
	Email       string     `gorm:"unique" json:"email"`
	Password    string     `json:"-"` // bcrypt 哈希，不返回给前端
	Name        string     `json:"name"`
	AvatarURL   string     `json:"avatarUrl"`
	Bio         string     `json:"bio"`
	Role        int        `gorm:"default:0" json:"role"`
	Status      int        `gorm:"default:0" json:"status"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
}
