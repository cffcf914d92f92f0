package community

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Deekshap16/Instaclone/config"
	"github.com/Deekshap16/Instaclone/internal/errors"
	"github.com/Deekshap16/Instaclone/internal/model"
	"github.com/Deekshap16/Instaclone/internal/service"
	"github.com/Deekshap16/Instaclone/internal/storage"
	"github.com/Deekshap16/Instaclone/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommunityHandler 处理帖子、点赞、评论和关注相关的HTTP请求
type CommunityHandler struct {
	postService service.PostServiceInterface
	userService service.UserServiceInterface
	storage     storage.Storage
}

func NewCommunityHandler(postService service.PostServiceInterface, userService service.UserServiceInterface, storage storage.Storage) *CommunityHandler {
	return &CommunityHandler{
		postService: postService,
		userService: userService,
		storage:     storage,
	}
}

// CreatePost 发布帖子，图片必填
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("image")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "图片不能为空", err))
		return
	}

	caption := c.PostForm("caption")

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("posts/%d/%s", userID, filename)

	storedPath, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("图片上传失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "图片上传失败", err))
		return
	}

	post := &model.Post{
		UserID:   userID,
		ImageURL: config.AppConfig.BackendURL + "/uploads/" + storedPath,
		Caption:  caption,
	}

	if err := h.postService.CreatePost(post); err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "创建帖子失败", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": post,
	})
}

// GetPost 获取单个帖子
func (h *CommunityHandler) GetPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	post, err := h.postService.GetPostByID(id, c.GetInt("user_id"))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取帖子失败", err))
		return
	}

	errors.HandleSuccess(c, post, "")
}

// GetFeed 获取关注流
func (h *CommunityHandler) GetFeed(c *gin.Context) {
	userID := c.GetInt("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	posts, err := h.postService.GetFeed(userID, page, pageSize)
	if err != nil {
		util.Logger.Error("获取关注流失败", zap.Error(err), zap.Int("user_id", userID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取关注流失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"posts": posts}, "")
}

// Explore 获取发现页帖子
func (h *CommunityHandler) Explore(c *gin.Context) {
	posts, err := h.postService.Explore(c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取帖子列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"posts": posts}, "")
}

// GetUserPosts 获取指定用户的帖子
func (h *CommunityHandler) GetUserPosts(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	posts, err := h.postService.GetUserPosts(id, c.GetInt("user_id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户帖子失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"posts": posts}, "")
}

// DeletePost 删除帖子，只有作者可以删除
func (h *CommunityHandler) DeletePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	if err := h.postService.DeletePost(id, c.GetInt("user_id")); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "删除帖子失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "帖子删除成功")
}

// LikePost 点赞
func (h *CommunityHandler) LikePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	likes, err := h.postService.LikePost(id, c.GetInt("user_id"))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "点赞失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"likes": likes, "liked": true}, "")
}

// UnlikePost 取消点赞
func (h *CommunityHandler) UnlikePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	likes, err := h.postService.UnlikePost(id, c.GetInt("user_id"))
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "取消点赞失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"likes": likes, "liked": false}, "")
}

// CreateComment 发表评论
func (h *CommunityHandler) CreateComment(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	var commentData struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&commentData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "评论内容不能为空", err))
		return
	}

	comment := &model.Comment{
		UserID:  c.GetInt("user_id"),
		PostID:  postID,
		Content: commentData.Content,
	}

	if err := h.postService.CommentPost(comment); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("创建评论失败", zap.Error(err), zap.Int("post_id", postID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "创建评论失败", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": comment,
	})
}

// ListComments 获取帖子的评论列表
func (h *CommunityHandler) ListComments(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	comments, err := h.postService.GetComments(postID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取评论失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"comments": comments}, "")
}

// FollowUser 关注用户
func (h *CommunityHandler) FollowUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	if err := h.userService.FollowUser(c.GetInt("user_id"), id); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "关注失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "关注成功")
}

// UnfollowUser 取消关注
func (h *CommunityHandler) UnfollowUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	if err := h.userService.UnfollowUser(c.GetInt("user_id"), id); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "取消关注失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "已取消关注")
}

// GetFollowers 获取粉丝列表
func (h *CommunityHandler) GetFollowers(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, err := h.userService.GetFollowers(id, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取粉丝列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"users": users}, "")
}

// GetFollowing 获取关注列表
func (h *CommunityHandler) GetFollowing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, err := h.userService.GetFollowing(id, page, pageSize)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取关注列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"users": users}, "")
}

// GetFollowStatus 查询对指定用户的关注状态
func (h *CommunityHandler) GetFollowStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	following, err := h.userService.IsFollowing(c.GetInt("user_id"), id)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "查询关注状态失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"is_following": following}, "")
}
