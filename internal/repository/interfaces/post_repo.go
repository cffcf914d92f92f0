package interfaces

import "github.com/Deekshap16/Instaclone/internal/model"

// PostRepository 定义了帖子、点赞和评论的数据库操作接口
type PostRepository interface {
	Create(post *model.Post) error
	GetByID(id int) (*model.Post, error)
	Delete(id int) error
	GetFeed(userID, page, pageSize int) ([]*model.Post, error)
	ListAll(limit int) ([]*model.Post, error)
	GetUserPosts(userID int) ([]*model.Post, error)

	CreateLike(userID, postID int) error
	DeleteLike(userID, postID int) error
	IsLikedByUser(postID, userID int) (bool, error)
	GetLikeCount(postID int) (int, error)
	GetLikeUserIDs(postID int) ([]int, error)

	CreateComment(comment *model.Comment) error
	GetCommentsByPostID(postID int) ([]*model.Comment, error)
	GetCommentCount(postID int) (int, error)
}
