package service

import (
	"testing"
	"time"

	"openbook_backend/internal/domain/user/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetList(offset, limit int) ([]model.User, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func createTestUser(id, username, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Name:     username,
		Role:     model.RoleUser,
		Status:   model.StatusNormal,
	}
	user.ID = id
	return user
}

func TestRegister(t *testing.T) {
	t.Run("New user registration success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByUsername", "alice").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

		token, err := service.Register("alice", "alice@example.com", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Username already taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByUsername", "alice").Return(createTestUser("u1", "alice", "x"), nil)

		token, err := service.Register("alice", "alice@example.com", "secret123")

		assert.Error(t, err)
		assert.Empty(t, token)
		assert.Contains(t, err.Error(), "already taken")
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Login success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser("u1", "alice", "secret123")

		mockRepo.On("GetByUsername", "alice").Return(user, nil)

		token, err := service.Login("alice", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser("u1", "alice", "secret123")

		mockRepo.On("GetByUsername", "alice").Return(user, nil)

		token, err := service.Login("alice", "wrong")

		assert.Error(t, err)
		assert.Empty(t, token)
	})

	t.Run("Unknown username", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)

		mockRepo.On("GetByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Login("ghost", "whatever")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid username or password")
	})

	t.Run("Banned account denied", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser("u1", "alice", "secret123")
		user.Status = model.StatusBanned
		until := time.Now().Add(24 * time.Hour)
		user.BannedUntil = &until

		mockRepo.On("GetByUsername", "alice").Return(user, nil)

		_, err := service.Login("alice", "secret123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "banned")
	})

	t.Run("Expired ban lifts on login", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo)
		user := createTestUser("u1", "alice", "secret123")
		user.Status = model.StatusBanned
		until := time.Now().Add(-time.Hour)
		user.BannedUntil = &until

		mockRepo.On("GetByUsername", "alice").Return(user, nil)
		mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

		token, err := service.Login("alice", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, model.StatusNormal, user.Status)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	t.Run("Pagination defaults applied", func(t *testing.T) {
		users := []model.User{*createTestUser("u1", "alice", "x")}
		mockRepo.On("GetList", 0, 10).Return(users, int64(1), nil)

		result, total, err := service.GetUsers(0, 0)

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Equal(t, int64(1), total)
		mockRepo.AssertExpectations(t)
	})
}

func TestDeactivateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)
	user := createTestUser("u1", "alice", "x")

	mockRepo.On("GetByID", "u1").Return(user, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.DeactivateUser("u1")

	assert.NoError(t, err)
	assert.Equal(t, model.StatusDeleted, user.Status)
	mockRepo.AssertExpectations(t)
}
