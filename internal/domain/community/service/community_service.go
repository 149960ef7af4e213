package service

import (
	"errors"

	"openbook_backend/internal/domain/community/model"
	"openbook_backend/internal/domain/community/repository"

	"gorm.io/gorm"
)

// CommunityService 社区服务接口
type CommunityService interface {
	CreateCommunity(creatorID, name, title, description, privacy string) (*model.Community, error)
	GetCommunity(id string) (*model.Community, error)
	GetCommunities(keyword string, page, limit int) ([]model.Community, int64, error)
	UpdateCommunity(actorID, communityID, title, description string) (*model.Community, error)

	Join(userID, communityID string) (*model.Membership, error)
	Invite(actorID, communityID, userID string) (*model.Membership, error)
	Leave(userID, communityID string) error
	GetMembers(communityID string, page, limit int) ([]model.Membership, int64, error)
	SetMemberRole(actorID, communityID, userID string, role int) (*model.Membership, error)

	BanMember(actorID, communityID, userID, reason string) error
	UnbanMember(actorID, communityID, userID string) error
	GetBans(actorID, communityID string, page, limit int) ([]model.CommunityBan, int64, error)
}

type communityService struct {
	repo repository.CommunityRepository
}

func NewCommunityService(repo repository.CommunityRepository) CommunityService {
	return &communityService{repo: repo}
}

// CreateCommunity 创建社区，创建者自动成为管理员
func (s *communityService) CreateCommunity(creatorID, name, title, description, privacy string) (*model.Community, error) {
	if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
		return nil, errors.New("privacy must be public or private")
	}

	if _, err := s.repo.GetCommunityByName(name); err == nil {
		return nil, errors.New("community name already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	community := &model.Community{
		Name:        name,
		Title:       title,
		Description: description,
		Privacy:     privacy,
		CreatorID:   creatorID,
	}
	if err := s.repo.CreateCommunity(community); err != nil {
		return nil, err
	}

	membership := &model.Membership{
		CommunityID: community.ID,
		UserID:      creatorID,
		Role:        model.RoleAdministrator,
	}
	if err := s.repo.CreateMembership(membership); err != nil {
		return nil, err
	}
	return community, nil
}

func (s *communityService) GetCommunity(id string) (*model.Community, error) {
	return s.repo.GetCommunityByID(id)
}

func (s *communityService) GetCommunities(keyword string, page, limit int) ([]model.Community, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetCommunities(keyword, offset, limit)
}

func (s *communityService) UpdateCommunity(actorID, communityID, title, description string) (*model.Community, error) {
	if err := s.requireRole(actorID, communityID, model.RoleAdministrator); err != nil {
		return nil, err
	}

	community, err := s.repo.GetCommunityByID(communityID)
	if err != nil {
		return nil, err
	}
	community.Title = title
	community.Description = description
	if err := s.repo.UpdateCommunity(community); err != nil {
		return nil, err
	}
	return community, nil
}

// Join 加入社区；私有社区只能通过邀请加入
func (s *communityService) Join(userID, communityID string) (*model.Membership, error) {
	community, err := s.repo.GetCommunityByID(communityID)
	if err != nil {
		return nil, err
	}
	if community.Privacy == model.PrivacyPrivate {
		return nil, errors.New("private community requires an invitation")
	}
	return s.addMember(userID, communityID)
}

// Invite 管理人员邀请用户加入社区，私有社区的唯一入口
func (s *communityService) Invite(actorID, communityID, userID string) (*model.Membership, error) {
	if err := s.requireStaff(actorID, communityID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCommunityByID(communityID); err != nil {
		return nil, err
	}
	return s.addMember(userID, communityID)
}

func (s *communityService) addMember(userID, communityID string) (*model.Membership, error) {
	banned, err := s.repo.HasBan(userID, communityID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, errors.New("user is banned from this community")
	}

	if _, err := s.repo.GetMembership(userID, communityID); err == nil {
		return nil, errors.New("already a member")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	membership := &model.Membership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        model.RoleMember,
	}
	if err := s.repo.CreateMembership(membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *communityService) Leave(userID, communityID string) error {
	membership, err := s.repo.GetMembership(userID, communityID)
	if err != nil {
		return err
	}

	// 最后一名管理员不能退出
	if membership.Role == model.RoleAdministrator {
		admins, err := s.countAdmins(communityID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return errors.New("last administrator cannot leave the community")
		}
	}
	return s.repo.DeleteMembership(userID, communityID)
}

func (s *communityService) GetMembers(communityID string, page, limit int) ([]model.Membership, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetMembers(communityID, offset, limit)
}

// SetMemberRole 设置成员角色，仅管理员可操作
func (s *communityService) SetMemberRole(actorID, communityID, userID string, role int) (*model.Membership, error) {
	if role != model.RoleMember && role != model.RoleModerator && role != model.RoleAdministrator {
		return nil, errors.New("invalid role")
	}
	if err := s.requireRole(actorID, communityID, model.RoleAdministrator); err != nil {
		return nil, err
	}

	membership, err := s.repo.GetMembership(userID, communityID)
	if err != nil {
		return nil, err
	}

	if membership.Role == model.RoleAdministrator && role != model.RoleAdministrator {
		admins, err := s.countAdmins(communityID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, errors.New("cannot demote the last administrator")
		}
	}

	membership.Role = role
	if err := s.repo.UpdateMembership(membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// BanMember 封禁成员，封禁后移除成员关系
func (s *communityService) BanMember(actorID, communityID, userID, reason string) error {
	if err := s.requireStaff(actorID, communityID); err != nil {
		return err
	}

	target, err := s.repo.GetMembership(userID, communityID)
	if err == nil && target.IsStaff() {
		// 版主不能封禁其他管理人员
		if err := s.requireRole(actorID, communityID, model.RoleAdministrator); err != nil {
			return errors.New("only administrators can ban staff members")
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	banned, err := s.repo.HasBan(userID, communityID)
	if err != nil {
		return err
	}
	if banned {
		return errors.New("user already banned")
	}

	if err := s.repo.CreateBan(&model.CommunityBan{
		CommunityID: communityID,
		UserID:      userID,
		BannedByID:  actorID,
		Reason:      reason,
	}); err != nil {
		return err
	}
	return s.repo.DeleteMembership(userID, communityID)
}

func (s *communityService) UnbanMember(actorID, communityID, userID string) error {
	if err := s.requireStaff(actorID, communityID); err != nil {
		return err
	}
	return s.repo.DeleteBan(userID, communityID)
}

func (s *communityService) GetBans(actorID, communityID string, page, limit int) ([]model.CommunityBan, int64, error) {
	if err := s.requireStaff(actorID, communityID); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetBans(communityID, offset, limit)
}

func (s *communityService) requireStaff(userID, communityID string) error {
	membership, err := s.repo.GetMembership(userID, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("not a member of this community")
		}
		return err
	}
	if !membership.IsStaff() {
		return errors.New("requires moderator or administrator role")
	}
	return nil
}

func (s *communityService) requireRole(userID, communityID string, role int) error {
	membership, err := s.repo.GetMembership(userID, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("not a member of this community")
		}
		return err
	}
	if membership.Role < role {
		return errors.New("insufficient community role")
	}
	return nil
}

func (s *communityService) countAdmins(communityID string) (int, error) {
	members, _, err := s.repo.GetMembers(communityID, 0, 1000)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range members {
		if m.Role == model.RoleAdministrator {
			count++
		}
	}
	return count, nil
}
