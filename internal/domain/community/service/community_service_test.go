package service

import (
	"testing"

	"openbook_backend/internal/domain/community/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockCommunityRepository is a mock of CommunityRepository
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) CreateCommunity(community *model.Community) error {
	args := m.Called(community)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetCommunityByID(id string) (*model.Community, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}

func (m *MockCommunityRepository) GetCommunityByName(name string) (*model.Community, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}

func (m *MockCommunityRepository) GetCommunities(keyword string, offset, limit int) ([]model.Community, int64, error) {
	args := m.Called(keyword, offset, limit)
	return args.Get(0).([]model.Community), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommunityRepository) UpdateCommunity(community *model.Community) error {
	args := m.Called(community)
	return args.Error(0)
}

func (m *MockCommunityRepository) CreateMembership(membership *model.Membership) error {
	args := m.Called(membership)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetMembership(userID, communityID string) (*model.Membership, error) {
	args := m.Called(userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockCommunityRepository) UpdateMembership(membership *model.Membership) error {
	args := m.Called(membership)
	return args.Error(0)
}

func (m *MockCommunityRepository) DeleteMembership(userID, communityID string) error {
	args := m.Called(userID, communityID)
	return args.Error(0)
}

func (m *MockCommunityRepository) GetMembers(communityID string, offset, limit int) ([]model.Membership, int64, error) {
	args := m.Called(communityID, offset, limit)
	return args.Get(0).([]model.Membership), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommunityRepository) CreateBan(ban *model.CommunityBan) error {
	args := m.Called(ban)
	return args.Error(0)
}

func (m *MockCommunityRepository) DeleteBan(userID, communityID string) error {
	args := m.Called(userID, communityID)
	return args.Error(0)
}

func (m *MockCommunityRepository) HasBan(userID, communityID string) (bool, error) {
	args := m.Called(userID, communityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommunityRepository) GetBans(communityID string, offset, limit int) ([]model.CommunityBan, int64, error) {
	args := m.Called(communityID, offset, limit)
	return args.Get(0).([]model.CommunityBan), args.Get(1).(int64), args.Error(2)
}

func testCommunity(id, privacy string) *model.Community {
	community := &model.Community{
		Name:    "gophers",
		Title:   "Gophers",
		Privacy: privacy,
	}
	community.ID = id
	return community
}

func membership(userID, communityID string, role int) *model.Membership {
	m := &model.Membership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
	}
	m.ID = userID + "-" + communityID
	return m
}

func TestCreateCommunity(t *testing.T) {
	t.Run("Creator becomes administrator", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetCommunityByName", "gophers").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("CreateCommunity", mock.AnythingOfType("*model.Community")).Return(nil)
		mockRepo.On("CreateMembership", mock.MatchedBy(func(m *model.Membership) bool {
			return m.UserID == "alice" && m.Role == model.RoleAdministrator
		})).Return(nil)

		community, err := service.CreateCommunity("alice", "gophers", "Gophers", "", model.PrivacyPublic)

		assert.NoError(t, err)
		assert.Equal(t, "alice", community.CreatorID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate name rejected", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetCommunityByName", "gophers").Return(testCommunity("c1", model.PrivacyPublic), nil)

		_, err := service.CreateCommunity("alice", "gophers", "Gophers", "", model.PrivacyPublic)

		assert.Error(t, err)
	})

	t.Run("Invalid privacy rejected", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		_, err := service.CreateCommunity("alice", "gophers", "Gophers", "", "secret")

		assert.Error(t, err)
	})
}

func TestJoin(t *testing.T) {
	t.Run("Join public community", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetCommunityByID", "c1").Return(testCommunity("c1", model.PrivacyPublic), nil)
		mockRepo.On("HasBan", "bob", "c1").Return(false, nil)
		mockRepo.On("GetMembership", "bob", "c1").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("CreateMembership", mock.AnythingOfType("*model.Membership")).Return(nil)

		m, err := service.Join("bob", "c1")

		assert.NoError(t, err)
		assert.Equal(t, model.RoleMember, m.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Private community requires invitation", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetCommunityByID", "c1").Return(testCommunity("c1", model.PrivacyPrivate), nil)

		_, err := service.Join("bob", "c1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invitation")
	})

	t.Run("Banned user cannot join", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetCommunityByID", "c1").Return(testCommunity("c1", model.PrivacyPublic), nil)
		mockRepo.On("HasBan", "bob", "c1").Return(true, nil)

		_, err := service.Join("bob", "c1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "banned")
	})

	t.Run("Staff invite into private community", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "mod", "c1").Return(membership("mod", "c1", model.RoleModerator), nil)
		mockRepo.On("GetCommunityByID", "c1").Return(testCommunity("c1", model.PrivacyPrivate), nil)
		mockRepo.On("HasBan", "bob", "c1").Return(false, nil)
		mockRepo.On("GetMembership", "bob", "c1").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("CreateMembership", mock.AnythingOfType("*model.Membership")).Return(nil)

		m, err := service.Invite("mod", "c1", "bob")

		assert.NoError(t, err)
		assert.Equal(t, "bob", m.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Plain member cannot invite", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "bob", "c1").Return(membership("bob", "c1", model.RoleMember), nil)

		_, err := service.Invite("bob", "c1", "carol")

		assert.Error(t, err)
	})
}

func TestLeave(t *testing.T) {
	t.Run("Last administrator cannot leave", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "alice", "c1").Return(membership("alice", "c1", model.RoleAdministrator), nil)
		mockRepo.On("GetMembers", "c1", 0, 1000).Return([]model.Membership{
			*membership("alice", "c1", model.RoleAdministrator),
			*membership("bob", "c1", model.RoleMember),
		}, int64(2), nil)

		err := service.Leave("alice", "c1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "last administrator")
	})

	t.Run("Member leaves freely", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "bob", "c1").Return(membership("bob", "c1", model.RoleMember), nil)
		mockRepo.On("DeleteMembership", "bob", "c1").Return(nil)

		err := service.Leave("bob", "c1")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestBanMember(t *testing.T) {
	t.Run("Moderator bans plain member and removes membership", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "mod", "c1").Return(membership("mod", "c1", model.RoleModerator), nil)
		mockRepo.On("GetMembership", "bob", "c1").Return(membership("bob", "c1", model.RoleMember), nil)
		mockRepo.On("HasBan", "bob", "c1").Return(false, nil)
		mockRepo.On("CreateBan", mock.AnythingOfType("*model.CommunityBan")).Return(nil)
		mockRepo.On("DeleteMembership", "bob", "c1").Return(nil)

		err := service.BanMember("mod", "c1", "bob", "spam")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Moderator cannot ban staff", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "mod", "c1").Return(membership("mod", "c1", model.RoleModerator), nil)
		mockRepo.On("GetMembership", "othermod", "c1").Return(membership("othermod", "c1", model.RoleModerator), nil)

		err := service.BanMember("mod", "c1", "othermod", "abuse")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "administrators")
	})

	t.Run("Plain member cannot ban", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "bob", "c1").Return(membership("bob", "c1", model.RoleMember), nil)

		err := service.BanMember("bob", "c1", "carol", "spam")

		assert.Error(t, err)
	})
}

func TestSetMemberRole(t *testing.T) {
	t.Run("Administrator promotes member", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)
		target := membership("bob", "c1", model.RoleMember)

		mockRepo.On("GetMembership", "admin", "c1").Return(membership("admin", "c1", model.RoleAdministrator), nil)
		mockRepo.On("GetMembership", "bob", "c1").Return(target, nil)
		mockRepo.On("UpdateMembership", target).Return(nil)

		m, err := service.SetMemberRole("admin", "c1", "bob", model.RoleModerator)

		assert.NoError(t, err)
		assert.Equal(t, model.RoleModerator, m.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Moderator cannot change roles", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)

		mockRepo.On("GetMembership", "mod", "c1").Return(membership("mod", "c1", model.RoleModerator), nil)

		_, err := service.SetMemberRole("mod", "c1", "bob", model.RoleModerator)

		assert.Error(t, err)
	})

	t.Run("Cannot demote the last administrator", func(t *testing.T) {
		mockRepo := new(MockCommunityRepository)
		service := NewCommunityService(mockRepo)
		target := membership("admin", "c1", model.RoleAdministrator)

		mockRepo.On("GetMembership", "admin", "c1").Return(target, nil)
		mockRepo.On("GetMembers", "c1", 0, 1000).Return([]model.Membership{*target}, int64(1), nil)

		_, err := service.SetMemberRole("admin", "c1", "admin", model.RoleMember)

		assert.Error(t, err)
	})
}
