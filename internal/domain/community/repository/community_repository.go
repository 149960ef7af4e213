package repository

import (
	"openbook_backend/internal/domain/community/model"

	"gorm.io/gorm"
)

type CommunityRepository interface {
	CreateCommunity(community *model.Community) error
	GetCommunityByID(id string) (*model.Community, error)
	GetCommunityByName(name string) (*model.Community, error)
	GetCommunities(keyword string, offset, limit int) ([]model.Community, int64, error)
	UpdateCommunity(community *model.Community) error

	CreateMembership(membership *model.Membership) error
	GetMembership(userID, communityID string) (*model.Membership, error)
	UpdateMembership(membership *model.Membership) error
	DeleteMembership(userID, communityID string) error
	GetMembers(communityID string, offset, limit int) ([]model.Membership, int64, error)

	CreateBan(ban *model.CommunityBan) error
	DeleteBan(userID, communityID string) error
	HasBan(userID, communityID string) (bool, error)
	GetBans(communityID string, offset, limit int) ([]model.CommunityBan, int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// --- Community ---

func (r *communityRepository) CreateCommunity(community *model.Community) error {
	return r.db.Create(community).Error
}

func (r *communityRepository) GetCommunityByID(id string) (*model.Community, error) {
	var community model.Community
	if err := r.db.Where("id = ?", id).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) GetCommunityByName(name string) (*model.Community, error) {
	var community model.Community
	if err := r.db.Where("name = ?", name).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) GetCommunities(keyword string, offset, limit int) ([]model.Community, int64, error) {
	var communities []model.Community
	var total int64

	query := r.db.Model(&model.Community{})
	if keyword != "" {
		query = query.Where("name ILIKE ? OR title ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&communities).Error; err != nil {
		return nil, 0, err
	}
	return communities, total, nil
}

func (r *communityRepository) UpdateCommunity(community *model.Community) error {
	return r.db.Save(community).Error
}

// --- Membership ---

func (r *communityRepository) CreateMembership(membership *model.Membership) error {
	return r.db.Create(membership).Error
}

func (r *communityRepository) GetMembership(userID, communityID string) (*model.Membership, error) {
	var membership model.Membership
	if err := r.db.Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *communityRepository) UpdateMembership(membership *model.Membership) error {
	return r.db.Save(membership).Error
}

func (r *communityRepository) DeleteMembership(userID, communityID string) error {
	return r.db.Where("user_id = ? AND community_id = ?", userID, communityID).
		Delete(&model.Membership{}).Error
}

func (r *communityRepository) GetMembers(communityID string, offset, limit int) ([]model.Membership, int64, error) {
	var members []model.Membership
	var total int64

	query := r.db.Model(&model.Membership{}).Where("community_id = ?", communityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// --- Ban ---

func (r *communityRepository) CreateBan(ban *model.CommunityBan) error {
	return r.db.Create(ban).Error
}

func (r *communityRepository) DeleteBan(userID, communityID string) error {
	return r.db.Where("user_id = ? AND community_id = ?", userID, communityID).
		Delete(&model.CommunityBan{}).Error
}

func (r *communityRepository) HasBan(userID, communityID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.CommunityBan{}).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		Count(&count).Error
	return count > 0, err
}

func (r *communityRepository) GetBans(communityID string, offset, limit int) ([]model.CommunityBan, int64, error) {
	var bans []model.CommunityBan
	var total int64

	query := r.db.Model(&model.CommunityBan{}).Where("community_id = ?", communityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&bans).Error; err != nil {
		return nil, 0, err
	}
	return bans, total, nil
}
