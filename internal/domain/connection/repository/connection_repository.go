package repository

import (
	"openbook_backend/internal/domain/connection/model"

	"gorm.io/gorm"
)

type ConnectionRepository interface {
	CreateCircle(circle *model.Circle) error
	GetCircleByID(id string) (*model.Circle, error)
	GetCirclesByOwner(ownerID string) ([]model.Circle, error)
	UpdateCircle(circle *model.Circle) error
	DeleteCircle(id string) error

	CreateConnection(conn *model.Connection) error
	GetConnection(ownerID, targetID string) (*model.Connection, error)
	ReplaceConnectionCircles(conn *model.Connection, circles []model.Circle) error
	DeleteConnectionPair(userA, userB string) error

	CreateBlock(block *model.Block) error
	DeleteBlock(blockerID, blockedID string) error
	HasBlockEitherDirection(userA, userB string) (bool, error)
	GetBlocksByBlocker(blockerID string, offset, limit int) ([]model.Block, int64, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// --- Circle ---

func (r *connectionRepository) CreateCircle(circle *model.Circle) error {
	return r.db.Create(circle).Error
}

func (r *connectionRepository) GetCircleByID(id string) (*model.Circle, error) {
	var circle model.Circle
	if err := r.db.Where("id = ?", id).First(&circle).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *connectionRepository) GetCirclesByOwner(ownerID string) ([]model.Circle, error) {
	var circles []model.Circle
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at asc").Find(&circles).Error; err != nil {
		return nil, err
	}
	return circles, nil
}

func (r *connectionRepository) UpdateCircle(circle *model.Circle) error {
	return r.db.Save(circle).Error
}

func (r *connectionRepository) DeleteCircle(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Circle{}).Error
}

// --- Connection ---

func (r *connectionRepository) CreateConnection(conn *model.Connection) error {
	return r.db.Create(conn).Error
}

func (r *connectionRepository) GetConnection(ownerID, targetID string) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.Preload("Circles").
		Where("owner_id = ? AND target_id = ?", ownerID, targetID).
		First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ReplaceConnectionCircles(conn *model.Connection, circles []model.Circle) error {
	return r.db.Model(conn).Association("Circles").Replace(circles)
}

func (r *connectionRepository) DeleteConnectionPair(userA, userB string) error {
	return r.db.
		Where("(owner_id = ? AND target_id = ?) OR (owner_id = ? AND target_id = ?)",
			userA, userB, userB, userA).
		Delete(&model.Connection{}).Error
}

// --- Block ---

func (r *connectionRepository) CreateBlock(block *model.Block) error {
	return r.db.Create(block).Error
}

func (r *connectionRepository) DeleteBlock(blockerID, blockedID string) error {
	return r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{}).Error
}

func (r *connectionRepository) HasBlockEitherDirection(userA, userB string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

func (r *connectionRepository) GetBlocksByBlocker(blockerID string, offset, limit int) ([]model.Block, int64, error) {
	var blocks []model.Block
	var total int64

	query := r.db.Model(&model.Block{}).Where("blocker_id = ?", blockerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&blocks).Error; err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}
