package service

import (
	"database/sql"

	"github.com/Deekshap16/Instaclone/internal/errors"
	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/repository/interfaces"
)

// PostService 处理帖子、点赞和评论的业务逻辑
type PostService struct {
	postRepo interfaces.PostRepository
}

func NewPostService(postRepo interfaces.PostRepository) *PostService {
	return &PostService{postRepo}
}

func (s *PostService) CreatePost(post *model.Post) error {
	return s.postRepo.Create(post)
}

// GetPostByID 获取帖子，附带点赞数、评论数和查看者的点赞状态
func (s *PostService) GetPostByID(id, viewerID int) (*model.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	if err := s.decoratePost(post, viewerID); err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost 删除帖子，只有作者本人可以删除
func (s *PostService) DeletePost(id, userID int) error {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "帖子不存在")
	}
	if post.UserID != userID {
		return errors.New(errors.ErrForbidden, "无权删除该帖子")
	}

	return s.postRepo.Delete(id)
}

// GetFeed 获取关注流：自己和关注的人的帖子
func (s *PostService) GetFeed(userID, page, pageSize int) ([]*model.Post, error) {
	posts, err := s.postRepo.GetFeed(userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return posts, s.decoratePosts(posts, userID)
}

// Explore 获取发现页帖子，最多50条
func (s *PostService) Explore(viewerID int) ([]*model.Post, error) {
	posts, err := s.postRepo.ListAll(50)
	if err != nil {
		return nil, err
	}
	return posts, s.decoratePosts(posts, viewerID)
}

// GetUserPosts 获取指定用户的全部帖子
func (s *PostService) GetUserPosts(userID, viewerID int) ([]*model.Post, error) {
	posts, err := s.postRepo.GetUserPosts(userID)
	if err != nil {
		return nil, err
	}
	return posts, s.decoratePosts(posts, viewerID)
}

// LikePost 点赞。重复点赞是空操作，返回最新的点赞用户列表
func (s *PostService) LikePost(postID, userID int) ([]int, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	liked, err := s.postRepo.IsLikedByUser(postID, userID)
	if err != nil {
		return nil, err
	}
	if !liked {
		if err := s.postRepo.CreateLike(userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetLikeUserIDs(postID)
}

// UnlikePost 取消点赞。未点赞时是空操作，返回最新的点赞用户列表
func (s *PostService) UnlikePost(postID, userID int) ([]int, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	if err := s.postRepo.DeleteLike(userID, postID); err != nil {
		return nil, err
	}

	return s.postRepo.GetLikeUserIDs(postID)
}

// CommentPost 在帖子下追加评论
func (s *PostService) CommentPost(comment *model.Comment) error {
	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	return s.postRepo.CreateComment(comment)
}

// GetComments 获取帖子的全部评论，按时间升序
func (s *PostService) GetComments(postID int) ([]*model.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "帖子不存在")
	}

	return s.postRepo.GetCommentsByPostID(postID)
}

func (s *PostService) decoratePosts(posts []*model.Post, viewerID int) error {
	for _, post := range posts {
		if err := s.decoratePost(post, viewerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostService) decoratePost(post *model.Post, viewerID int) error {
	var err error
	if post.LikeCount, err = s.postRepo.GetLikeCount(post.ID); err != nil {
		return err
	}
	if post.CommentCount, err = s.postRepo.GetCommentCount(post.ID); err != nil {
		return err
	}
	if viewerID > 0 {
		if post.IsLiked, err = s.postRepo.IsLikedByUser(post.ID, viewerID); err != nil {
			if err == sql.ErrNoRows {
				post.IsLiked = false
				return nil
			}
			return err
		}
	}
	return nil
}

// PostServiceInterface 定义帖子服务接口，便于在测试中替换
type PostServiceInterface interface {
	CreatePost(post *model.Post) error
	GetPostByID(id, viewerID int) (*model.Post, error)
	DeletePost(id, userID int) error
	GetFeed(userID, page, pageSize int) ([]*model.Post, error)
	Explore(viewerID int) ([]*model.Post, error)
	GetUserPosts(userID, viewerID int) ([]*model.Post, error)
	LikePost(postID, userID int) ([]int, error)
	UnlikePost(postID, userID int) ([]int, error)
	CommentPost(comment *model.Comment) error
	GetComments(postID int) ([]*model.Comment, error)
}

var _ PostServiceInterface = (*PostService)(nil)
