package mysql

import (
	"database/sql"

	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/util"

	"go.uber.org/zap"
)

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	query := `INSERT INTO posts (user_id, image_url, caption, created_at, updated_at)
              VALUES (?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, post.UserID, post.ImageURL, post.Caption)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return err
	}

	postID, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新帖子ID失败", zap.Error(err))
		return err
	}
	post.ID = int(postID)

	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID))
	return nil
}

func (r *postRepository) GetByID(id int) (*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.image_url, p.caption, p.created_at, p.updated_at,
               u.username, u.full_name, u.avatar_url
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.id = ?`

	var post model.Post
	var user model.UserSummary
	err := r.db.QueryRow(query, id).Scan(
		&post.ID, &post.UserID, &post.ImageURL, &post.Caption,
		&post.CreatedAt, &post.UpdatedAt,
		&user.Username, &user.FullName, &user.AvatarURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.ID = post.UserID
	post.User = &user

	return &post, nil
}

func (r *postRepository) Delete(id int) error {
	util.Logger.Info("开始删除帖子", zap.Int("post_id", id))

	query := `DELETE FROM posts WHERE id = ?`
	_, err := r.db.Exec(query, id)
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}

	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

// GetFeed 返回用户关注的人加上自己的帖子，按时间倒序
func (r *postRepository) GetFeed(userID, page, pageSize int) ([]*model.Post, error) {
	offset := (page - 1) * pageSize
	query := `
        SELECT p.id, p.user_id, p.image_url, p.caption, p.created_at, p.updated_at,
               u.username, u.full_name, u.avatar_url
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.user_id = ? OR p.user_id IN (
            SELECT followed_id FROM follows WHERE follower_id = ?
        )
        ORDER BY p.created_at DESC
        LIMIT ? OFFSET ?`

	return r.queryPosts(query, userID, userID, pageSize, offset)
}

// ListAll 返回最新的帖子，用于发现页
func (r *postRepository) ListAll(limit int) ([]*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.image_url, p.caption, p.created_at, p.updated_at,
               u.username, u.full_name, u.avatar_url
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        ORDER BY p.created_at DESC
        LIMIT ?`

	return r.queryPosts(query, limit)
}

func (r *postRepository) GetUserPosts(userID int) ([]*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.image_url, p.caption, p.created_at, p.updated_at,
               u.username, u.full_name, u.avatar_url
        FROM posts p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.user_id = ?
        ORDER BY p.created_at DESC`

	return r.queryPosts(query, userID)
}

func (r *postRepository) queryPosts(query string, args ...interface{}) ([]*model.Post, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		var post model.Post
		var user model.UserSummary
		err := rows.Scan(
			&post.ID, &post.UserID, &post.ImageURL, &post.Caption,
			&post.CreatedAt, &post.UpdatedAt,
			&user.Username, &user.FullName, &user.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		user.ID = post.UserID
		post.User = &user
		posts = append(posts, &post)
	}

	return posts, rows.Err()
}

func (r *postRepository) CreateLike(userID, postID int) error {
	query := `INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, NOW())`
	_, err := r.db.Exec(query, userID, postID)
	if err != nil {
		util.Logger.Error("点赞失败", zap.Error(err),
			zap.Int("user_id", userID), zap.Int("post_id", postID))
		return err
	}
	return nil
}

func (r *postRepository) DeleteLike(userID, postID int) error {
	query := `DELETE FROM likes WHERE user_id = ? AND post_id = ?`
	_, err := r.db.Exec(query, userID, postID)
	if err != nil {
		util.Logger.Error("取消点赞失败", zap.Error(err),
			zap.Int("user_id", userID), zap.Int("post_id", postID))
		return err
	}
	return nil
}

func (r *postRepository) IsLikedByUser(postID, userID int) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`
	err := r.db.QueryRow(query, postID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) GetLikeCount(postID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&count)
	return count, err
}

// GetLikeUserIDs 返回点赞用户ID，按点赞时间升序
func (r *postRepository) GetLikeUserIDs(postID int) ([]int, error) {
	rows, err := r.db.Query(`SELECT user_id FROM likes WHERE post_id = ? ORDER BY created_at ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *postRepository) CreateComment(comment *model.Comment) error {
	query := `INSERT INTO comments (user_id, post_id, content, created_at)
              VALUES (?, ?, ?, NOW())`

	result, err := r.db.Exec(query, comment.UserID, comment.PostID, comment.Content)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err),
			zap.Int("post_id", comment.PostID))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新评论ID失败", zap.Error(err))
		return err
	}
	comment.ID = int(id)

	return nil
}

// GetCommentsByPostID 返回帖子的全部评论，按时间升序
func (r *postRepository) GetCommentsByPostID(postID int) ([]*model.Comment, error) {
	query := `
        SELECT c.id, c.user_id, c.post_id, c.content, c.created_at,
               u.username, u.full_name, u.avatar_url
        FROM comments c
        LEFT JOIN users u ON c.user_id = u.id
        WHERE c.post_id = ?
        ORDER BY c.created_at ASC`

	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var comment model.Comment
		var user model.UserSummary
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.PostID, &comment.Content, &comment.CreatedAt,
			&user.Username, &user.FullName, &user.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		user.ID = comment.UserID
		comment.User = &user
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}

func (r *postRepository) GetCommentCount(postID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&count)
	return count, err
}
