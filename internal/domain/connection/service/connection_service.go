package service

import (
	"errors"

	"openbook_backend/internal/domain/connection/model"
	"openbook_backend/internal/domain/connection/repository"

	"gorm.io/gorm"
)

// ConnectionService 连接/圈子/拉黑服务接口
type ConnectionService interface {
	CreateCircle(ownerID, name, color string) (*model.Circle, error)
	GetCircles(ownerID string) ([]model.Circle, error)
	UpdateCircle(ownerID, circleID, name, color string) (*model.Circle, error)
	DeleteCircle(ownerID, circleID string) error

	Connect(userID, targetID string, circleIDs []string) (*model.Connection, error)
	Disconnect(userID, targetID string) error
	UpdateConnectionCircles(userID, targetID string, circleIDs []string) (*model.Connection, error)

	BlockUser(blockerID, blockedID string) error
	UnblockUser(blockerID, blockedID string) error
	GetBlockedUsers(blockerID string, page, limit int) ([]model.Block, int64, error)
}

type connectionService struct {
	repo repository.ConnectionRepository
}

func NewConnectionService(repo repository.ConnectionRepository) ConnectionService {
	return &connectionService{repo: repo}
}

func (s *connectionService) CreateCircle(ownerID, name, color string) (*model.Circle, error) {
	circle := &model.Circle{
		OwnerID: ownerID,
		Name:    name,
		Color:   color,
	}
	if err := s.repo.CreateCircle(circle); err != nil {
		return nil, err
	}
	return circle, nil
}

func (s *connectionService) GetCircles(ownerID string) ([]model.Circle, error) {
	return s.repo.GetCirclesByOwner(ownerID)
}

func (s *connectionService) UpdateCircle(ownerID, circleID, name, color string) (*model.Circle, error) {
	circle, err := s.repo.GetCircleByID(circleID)
	if err != nil {
		return nil, err
	}
	if circle.OwnerID != ownerID {
		return nil, errors.New("circle does not belong to user")
	}

	circle.Name = name
	circle.Color = color
	if err := s.repo.UpdateCircle(circle); err != nil {
		return nil, err
	}
	return circle, nil
}

func (s *connectionService) DeleteCircle(ownerID, circleID string) error {
	circle, err := s.repo.GetCircleByID(circleID)
	if err != nil {
		return err
	}
	if circle.OwnerID != ownerID {
		return errors.New("circle does not belong to user")
	}
	return s.repo.DeleteCircle(circleID)
}

// Connect 建立 userID -> targetID 的连接；双方各建立一行后连接确认
func (s *connectionService) Connect(userID, targetID string, circleIDs []string) (*model.Connection, error) {
	if userID == targetID {
		return nil, errors.New("cannot connect with yourself")
	}

	// 拉黑状态下不允许建立连接
	blocked, err := s.repo.HasBlockEitherDirection(userID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errors.New("cannot connect with a blocked user")
	}

	if _, err := s.repo.GetConnection(userID, targetID); err == nil {
		return nil, errors.New("connection already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	circles, err := s.ownedCircles(userID, circleIDs)
	if err != nil {
		return nil, err
	}

	conn := &model.Connection{
		OwnerID:  userID,
		TargetID: targetID,
		Circles:  circles,
	}
	if err := s.repo.CreateConnection(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *connectionService) Disconnect(userID, targetID string) error {
	return s.repo.DeleteConnectionPair(userID, targetID)
}

func (s *connectionService) UpdateConnectionCircles(userID, targetID string, circleIDs []string) (*model.Connection, error) {
	conn, err := s.repo.GetConnection(userID, targetID)
	if err != nil {
		return nil, err
	}

	circles, err := s.ownedCircles(userID, circleIDs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceConnectionCircles(conn, circles); err != nil {
		return nil, err
	}
	conn.Circles = circles
	return conn, nil
}

// BlockUser 拉黑用户并移除双方连接
func (s *connectionService) BlockUser(blockerID, blockedID string) error {
	if blockerID == blockedID {
		return errors.New("cannot block yourself")
	}

	exists, err := s.repo.HasBlockEitherDirection(blockerID, blockedID)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("user already blocked")
	}

	if err := s.repo.CreateBlock(&model.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
	}); err != nil {
		return err
	}

	// 拉黑后连接立即失效
	return s.repo.DeleteConnectionPair(blockerID, blockedID)
}

func (s *connectionService) UnblockUser(blockerID, blockedID string) error {
	return s.repo.DeleteBlock(blockerID, blockedID)
}

func (s *connectionService) GetBlockedUsers(blockerID string, page, limit int) ([]model.Block, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetBlocksByBlocker(blockerID, offset, limit)
}

// ownedCircles 校验圈子归属并返回圈子实体
func (s *connectionService) ownedCircles(ownerID string, circleIDs []string) ([]model.Circle, error) {
	circles := make([]model.Circle, 0, len(circleIDs))
	for _, id := range circleIDs {
		circle, err := s.repo.GetCircleByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("circle not found: " + id)
			}
			return nil, err
		}
		if circle.OwnerID != ownerID {
			return nil, errors.New("circle does not belong to user")
		}
		circles = append(circles, *circle)
	}
	return circles, nil
}
