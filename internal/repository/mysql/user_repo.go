package mysql

import (
	"database/sql"
	"log"

	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	log.Printf("尝试创建新用户：%s", user.Email)
	query := `INSERT INTO users (username, email, password_hash, full_name, bio, avatar_url)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query, user.Username, user.Email, user.PasswordHash, user.FullName, user.Bio, user.AvatarURL)
	if err != nil {
		log.Printf("创建用户失败：%v", err)
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Printf("获取新用户ID失败：%v", err)
		return err
	}
	user.ID = int(id)
	log.Printf("用户创建成功：ID=%d", user.ID)
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at, updated_at
              FROM users WHERE id = ?`
	var user model.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Bio, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at, updated_at
              FROM users WHERE email = ?`
	var user model.User
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Bio, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, full_name, bio, avatar_url, created_at, updated_at
              FROM users WHERE username = ?`
	var user model.User
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Bio, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 更新用户资料
func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users SET username = ?, full_name = ?, bio = ?, avatar_url = ?, updated_at = NOW()
              WHERE id = ?`
	_, err := r.db.Exec(query, user.Username, user.FullName, user.Bio, user.AvatarURL, user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
		return err
	}
	return nil
}

// Search 按用户名或姓名模糊搜索用户
func (r *userRepository) Search(query string, limit int) ([]*model.User, error) {
	pattern := "%" + query + "%"
	sqlQuery := `SELECT id, username, email, full_name, bio, avatar_url, created_at, updated_at
                 FROM users
                 WHERE username LIKE ? OR full_name LIKE ?
                 LIMIT ?`

	rows, err := r.db.Query(sqlQuery, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.FullName,
			&user.Bio, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// CreateFollow 创建关注关系
func (r *userRepository) CreateFollow(followerID, followedID int) error {
	query := `INSERT INTO follows (follower_id, followed_id, created_at) VALUES (?, ?, NOW())`
	_, err := r.db.Exec(query, followerID, followedID)
	if err != nil {
		util.Logger.Error("创建关注关系失败", zap.Error(err),
			zap.Int("follower_id", followerID), zap.Int("followed_id", followedID))
		return err
	}
	return nil
}

// DeleteFollow 删除关注关系，不存在时为空操作
func (r *userRepository) DeleteFollow(followerID, followedID int) error {
	query := `DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`
	_, err := r.db.Exec(query, followerID, followedID)
	if err != nil {
		util.Logger.Error("删除关注关系失败", zap.Error(err),
			zap.Int("follower_id", followerID), zap.Int("followed_id", followedID))
		return err
	}
	return nil
}

// IsFollowing 判断是否已关注
func (r *userRepository) IsFollowing(followerID, followedID int) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?`
	err := r.db.QueryRow(query, followerID, followedID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers 获取粉丝列表
func (r *userRepository) GetFollowers(userID, page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `
        SELECT u.id, u.username, u.email, u.full_name, u.bio, u.avatar_url, u.created_at, u.updated_at
        FROM users u
        JOIN follows f ON u.id = f.follower_id
        WHERE f.followed_id = ?
        ORDER BY f.created_at DESC
        LIMIT ? OFFSET ?`

	return r.queryUsers(query, userID, pageSize, offset)
}

// GetFollowing 获取关注列表
func (r *userRepository) GetFollowing(userID, page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `
        SELECT u.id, u.username, u.email, u.full_name, u.bio, u.avatar_url, u.created_at, u.updated_at
        FROM users u
        JOIN follows f ON u.id = f.followed_id
        WHERE f.follower_id = ?
        ORDER BY f.created_at DESC
        LIMIT ? OFFSET ?`

	return r.queryUsers(query, userID, pageSize, offset)
}

func (r *userRepository) queryUsers(query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.FullName,
			&user.Bio, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// GetFollowerCount 获取粉丝数
func (r *userRepository) GetFollowerCount(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE followed_id = ?`, userID).Scan(&count)
	return count, err
}

// GetFollowingCount 获取关注数
func (r *userRepository) GetFollowingCount(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&count)
	return count, err
}
