package user

import (
	"fmt"
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

type ProfileHandler struct {
	userService service.UserServiceInterface
	storage     storage.Storage
}

func NewProfileHandler(userService service.UserServiceInterface, storage storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

// GetProfile 获取当前用户的资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user}, "")
}

// GetUser 获取指定用户的资料，附带相对于查看者的关注状态
func (h *ProfileHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	viewerID := c.GetInt("user_id")
	user, err := h.userService.GetProfile(id, viewerID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user}, "")
}

// UpdateProfile 更新当前用户的资料
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var updateData struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Bio      string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user := &model.User{
		ID:       c.GetInt("user_id"),
		Username: updateData.Username,
		FullName: updateData.FullName,
		Bio:      updateData.Bio,
	}

	if err := h.userService.UpdateProfile(user); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新用户资料失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user}, "资料更新成功")
}

// UploadAvatar 上传头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "未找到上传的文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%d/%s", userID, filename)

	storedPath, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("头像上传失败", zap.Error(err), zap.Int("user_id", userID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "头像上传失败", err))
		return
	}

	avatarURL := config.AppConfig.BackendURL + "/uploads/" + storedPath

	user := &model.User{
		ID:        userID,
		AvatarURL: avatarURL,
	}
	if err := h.userService.UpdateProfile(user); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "保存头像失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"avatar_url": avatarURL}, "头像上传成功")
}

// SearchUsers 搜索用户
func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	query := c.Query("query")

	users, err := h.userService.SearchUsers(query)
	if err != nil {
		util.Logger.Error("搜索用户失败", zap.Error(err), zap.String("query", query))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "搜索用户失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"users": users}, "")
}
