package visibility

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// 内容类型到数据表的映射
var kindTables = map[Kind]string{
	KindPost:     "posts",
	KindComment:  "comments",
	KindReaction: "reactions",
}

// GormFactProvider 基于领域数据表的事实查询实现。
// 直接按表名查询而不引用各领域模型，评估器不参与领域包的依赖关系
type GormFactProvider struct {
	db *gorm.DB
}

func NewGormFactProvider(db *gorm.DB) *GormFactProvider {
	return &GormFactProvider{db: db}
}

func (p *GormFactProvider) IsBlocked(ctx context.Context, viewerID, otherID string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("blocks").
		Where("deleted_at IS NULL").
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			viewerID, otherID, otherID, viewerID).
		Count(&count).Error
	return count > 0, err
}

func (p *GormFactProvider) CommunityRole(ctx context.Context, userID, communityID string) (Role, error) {
	var role int
	err := p.db.WithContext(ctx).Table("memberships").
		Select("role").
		Where("user_id = ? AND community_id = ? AND deleted_at IS NULL", userID, communityID).
		Take(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	return Role(role), nil
}

func (p *GormFactProvider) IsBanned(ctx context.Context, userID, communityID string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("community_bans").
		Where("user_id = ? AND community_id = ? AND deleted_at IS NULL", userID, communityID).
		Count(&count).Error
	return count > 0, err
}

func (p *GormFactProvider) IsSoftDeleted(ctx context.Context, kind Kind, itemID string) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, errors.New("unknown content kind: " + string(kind))
	}
	var count int64
	err := p.db.WithContext(ctx).Table(table).
		Where("id = ? AND deleted_at IS NOT NULL", itemID).
		Count(&count).Error
	return count > 0, err
}

func (p *GormFactProvider) ModerationStatus(ctx context.Context, kind Kind, itemID string) (ModerationStatus, error) {
	if kind != KindPost && kind != KindComment {
		return ModerationNone, nil
	}
	var status string
	err := p.db.WithContext(ctx).Table("reports").
		Select("status").
		Where("target_type = ? AND target_id = ? AND deleted_at IS NULL", string(kind), itemID).
		Order("created_at desc").
		Limit(1).
		Take(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ModerationNone, nil
		}
		return ModerationNone, err
	}
	return ModerationStatus(status), nil
}

func (p *GormFactProvider) ConnectedInCircles(ctx context.Context, ownerID, viewerID string, circleIDs []string) (bool, error) {
	if len(circleIDs) == 0 {
		return false, nil
	}
	var count int64
	err := p.db.WithContext(ctx).Table("connections").
		Joins("JOIN connection_circles ON connection_circles.connection_id = connections.id").
		Where("connections.owner_id = ? AND connections.target_id = ? AND connections.deleted_at IS NULL", ownerID, viewerID).
		Where("connection_circles.circle_id IN ?", circleIDs).
		Count(&count).Error
	return count > 0, err
}

func (p *GormFactProvider) HasActiveSuspension(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("suspensions").
		Where("user_id = ? AND expires_at > ? AND deleted_at IS NULL", userID, time.Now()).
		Count(&count).Error
	return count > 0, err
}

func (p *GormFactProvider) CommunityPrivacy(ctx context.Context, communityID string) (string, error) {
	var privacy string
	err := p.db.WithContext(ctx).Table("communities").
		Select("privacy").
		Where("id = ? AND deleted_at IS NULL", communityID).
		Take(&privacy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PrivacyPublic, nil
		}
		return "", err
	}
	return privacy, nil
}
