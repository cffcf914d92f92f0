package service

import (
	"database/sql"
	"sync"
	"time"

	"github.com/Deekshap16/Instaclone/internal/errors"
	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/repository/interfaces"
	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	emailService   *EmailService
	tokenBlacklist map[string]time.Time
	blacklistMutex sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		emailService:   NewEmailService(),
		tokenBlacklist: make(map[string]time.Time),
	}
}

// IsUsernameTaken 检查用户名是否已被使用
func (s *UserService) IsUsernameTaken(username string) (bool, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// IsEmailTaken 检查邮箱是否已被使用
func (s *UserService) IsEmailTaken(email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// Register 注册新用户
func (s *UserService) Register(user *model.User) error {
	// 检查用户名和邮箱是否已被使用
	taken, err := s.IsUsernameTaken(user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "用户名已被占用")
	}

	taken, err = s.IsEmailTaken(user.Email)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "邮箱已被注册")
	}

	// 生成密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if user.FullName == "" {
		user.FullName = user.Username
	}

	// 创建用户
	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	// 异步发送欢迎邮件，失败不影响注册
	go func() {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
			util.Logger.Error("发送欢迎邮件失败", zap.Error(err))
		}
	}()

	return nil
}

// Login 用户登录
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		util.Logger.Warn("登录失败，未找到用户", zap.String("email", email))
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		util.Logger.Warn("登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, err
	}

	return user, nil
}

// GetUserByID 获取用户资料，附带关注统计
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return nil, err
	}

	if user.FollowerCount, err = s.userRepo.GetFollowerCount(id); err != nil {
		return nil, err
	}
	if user.FollowingCount, err = s.userRepo.GetFollowingCount(id); err != nil {
		return nil, err
	}

	return user, nil
}

// GetProfile 获取用户资料，并填充相对于查看者的关注状态
func (s *UserService) GetProfile(id, viewerID int) (*model.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if viewerID > 0 && viewerID != id {
		following, err := s.userRepo.IsFollowing(viewerID, id)
		if err != nil {
			return nil, err
		}
		user.IsFollowing = following
	}

	return user, nil
}

// UpdateProfile 更新用户资料。用户名变更时重新检查唯一性
func (s *UserService) UpdateProfile(user *model.User) error {
	existing, err := s.userRepo.FindByID(user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return err
	}

	if user.Username != "" && user.Username != existing.Username {
		taken, err := s.IsUsernameTaken(user.Username)
		if err != nil {
			return err
		}
		if taken {
			return errors.New(errors.ErrUserExists, "用户名已被占用")
		}
		existing.Username = user.Username
	}
	if user.FullName != "" {
		existing.FullName = user.FullName
	}
	if user.Bio != "" {
		existing.Bio = user.Bio
	}
	if user.AvatarURL != "" {
		existing.AvatarURL = user.AvatarURL
	}

	if err := s.userRepo.Update(existing); err != nil {
		return err
	}

	*user = *existing
	return nil
}

// SearchUsers 按用户名或姓名搜索用户，最多返回20条
func (s *UserService) SearchUsers(query string) ([]*model.User, error) {
	return s.userRepo.Search(query, 20)
}

// FollowUser 关注用户。不允许关注自己，也不允许重复关注
func (s *UserService) FollowUser(followerID, followedID int) error {
	if followerID == followedID {
		return errors.New(errors.ErrSelfFollow, "不能关注自己")
	}

	if _, err := s.userRepo.FindByID(followedID); err != nil {
		if err == sql.ErrNoRows {
			return errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return err
	}

	following, err := s.userRepo.IsFollowing(followerID, followedID)
	if err != nil {
		return err
	}
	if following {
		return errors.New(errors.ErrAlreadyFollowing, "已经关注了该用户")
	}

	return s.userRepo.CreateFollow(followerID, followedID)
}

// UnfollowUser 取消关注，未关注时为空操作
func (s *UserService) UnfollowUser(followerID, followedID int) error {
	return s.userRepo.DeleteFollow(followerID, followedID)
}

// IsFollowing 查询关注状态
func (s *UserService) IsFollowing(followerID, followedID int) (bool, error) {
	return s.userRepo.IsFollowing(followerID, followedID)
}

// GetFollowers 获取粉丝列表
func (s *UserService) GetFollowers(userID, page, pageSize int) ([]*model.User, error) {
	return s.userRepo.GetFollowers(userID, page, pageSize)
}

// GetFollowing 获取关注列表
func (s *UserService) GetFollowing(userID, page, pageSize int) ([]*model.User, error) {
	return s.userRepo.GetFollowing(userID, page, pageSize)
}

// Logout 登出：把令牌加入黑名单
func (s *UserService) Logout(token string) error {
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()
	s.tokenBlacklist[token] = time.Now().Add(time.Hour * 24 * 7)
	return nil
}

// IsTokenBlacklisted 检查令牌是否已被撤销
func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	defer s.blacklistMutex.RUnlock()

	expiry, exists := s.tokenBlacklist[token]
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		// 过期的黑名单条目延迟清理
		go s.cleanupBlacklist()
		return false
	}
	return true
}

func (s *UserService) cleanupBlacklist() {
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()
	now := time.Now()
	for token, expiry := range s.tokenBlacklist {
		if now.After(expiry) {
			delete(s.tokenBlacklist, token)
		}
	}
}

// UserServiceInterface 定义用户服务接口，便于在测试中替换
type UserServiceInterface interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	GetProfile(id, viewerID int) (*model.User, error)
	UpdateProfile(user *model.User) error
	SearchUsers(query string) ([]*model.User, error)
	FollowUser(followerID, followedID int) error
	UnfollowUser(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
	GetFollowers(userID, page, pageSize int) ([]*model.User, error)
	GetFollowing(userID, page, pageSize int) ([]*model.User, error)
	Logout(token string) error
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
