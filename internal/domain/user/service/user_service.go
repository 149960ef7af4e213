package service

import (
	"errors"
	"time"

	"openbook_backend/internal/domain/user/model"
	"openbook_backend/internal/domain/user/repository"
	"openbook_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务接口
type UserService interface {
	Register(username, email, password string) (string, error)
	Login(username, password string) (string, error)
	GetUsers(page, limit int) ([]model.User, int64, error)
	GetUser(id string) (*model.User, error)
	UpdateProfile(id string, name, avatarURL, bio string) (*model.User, error)
	DeactivateUser(id string) error
}

// userService 实现
type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register 注册新用户并签发 Token
func (s *userService) Register(username, email, password string) (string, error) {
	// 1. 检查用户名是否已存在
	if _, err := s.repo.GetByUsername(username); err == nil {
		return "", errors.New("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	// 2. 哈希密码
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Name:     username,
		Role:     model.RoleUser,
	}
	if err := s.repo.Create(user); err != nil {
		return "", err
	}

	// 3. 生成 Token
	token, _, err := utils.GenerateToken(user.ID, user.Role)
	return token, err
}

// Login 登录
func (s *userService) Login(username, password string) (string, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("invalid username or password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid username or password")
	}

	// 检查用户状态
	if user.Status == model.StatusBanned {
		if user.BannedUntil != nil && time.Now().After(*user.BannedUntil) {
			user.Status = model.StatusNormal
			user.BannedUntil = nil
			if err := s.repo.Update(user); err != nil {
				return "", err
			}
		} else {
			return "", errors.New("account is banned")
		}
	}
	if user.Status == model.StatusDeleted {
		return "", errors.New("account has been deleted")
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	return token, err
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.repo.GetList(offset, limit)
}

// GetUser 获取单个用户
func (s *userService) GetUser(id string) (*model.User, error) {
	return s.repo.GetByID(id)
}

// UpdateProfile 更新用户资料
func (s *userService) UpdateProfile(id string, name, avatarURL, bio string) (*model.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.AvatarURL = avatarURL
	user.Bio = bio

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser 注销用户（软删除，标记为已注销）
func (s *userService) DeactivateUser(id string) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	user.Status = model.StatusDeleted
	return s.repo.Update(user)
}
