package interfaces

import "github.com/Deekshap16/Instaclone/internal/model"

// UserRepository 定义了用户及关注关系的数据库操作接口
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	Search(query string, limit int) ([]*model.User, error)

	CreateFollow(followerID, followedID int) error
	DeleteFollow(followerID, followedID int) error
	IsFollowing(followerID, followedID int) (bool, error)
	GetFollowers(userID, page, pageSize int) ([]*model.User, error)
	GetFollowing(userID, page, pageSize int) ([]*model.User, error)
	GetFollowerCount(userID int) (int, error)
	GetFollowingCount(userID int) (int, error)
}
