package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Deekshap16/Instaclone/config"
	chatapi "github.com/Deekshap16/Instaclone/internal/api/chat"
	"github.com/Deekshap16/Instaclone/internal/api/community"
	"github.com/Deekshap16/Instaclone/internal/api/user"
	"github.com/Deekshap16/Instaclone/internal/chat"
	"github.com/Deekshap16/Instaclone/internal/middleware"
	"github.com/Deekshap16/Instaclone/internal/repository/mysql"
	"github.com/Deekshap16/Instaclone/internal/service"
	"github.com/Deekshap16/Instaclone/internal/storage"
	"github.com/Deekshap16/Instaclone/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	// 在 main 函数开始处添加。日志初始化之前发生的panic退回标准库输出
	defer func() {
		if r := recover(); r != nil {
			if util.Logger != nil {
				util.Logger.Error("程序发生严重错误", zap.Any("error", r))
			} else {
				log.Printf("程序发生严重错误: %v", r)
			}
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("username", util.ValidateUsername)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化存储后端（本地 / S3 / GCS）
	fileStorage, err := storage.New(&config.AppConfig)
	if err != nil {
		util.Logger.Fatal("初始化存储后端失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	postRepo := mysql.NewPostRepository(db)
	messageRepo := mysql.NewMessageRepository(db)

	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo)

	// 在线状态注册表和消息路由。Hub 持有所有连接，
	// Router 负责查表并向在线的接收方推送
	registry := chat.NewRegistry()
	hub := chat.NewHub(registry)
	chatRouter := chat.NewRouter(registry, hub)
	chatService := service.NewChatService(messageRepo, userRepo, chatRouter)
	hub.SetMessageHandler(chatService)

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, fileStorage)
	communityHandler := community.NewCommunityHandler(postService, userService, fileStorage)
	chatHandler := chatapi.NewChatHandler(chatService, hub)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	r.Use(cors.New(corsConfig))

	// 静态文件的CORS单独处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// WebSocket 连接入口。身份在连接建立后通过 join 事件声明
	r.GET("/ws", chatHandler.ServeWS)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 用户相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware(userService))
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/refresh-token", authHandler.RefreshToken)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)
		}

		// 用户查询相关路由
		api.GET("/users/search", middleware.AuthMiddleware(userService), profileHandler.SearchUsers)
		api.GET("/users/:id", middleware.AuthMiddleware(userService), profileHandler.GetUser)

		// 帖子相关路由
		api.POST("/posts", middleware.AuthMiddleware(userService), communityHandler.CreatePost)
		api.GET("/posts/:id", middleware.AuthMiddleware(userService), communityHandler.GetPost)
		api.DELETE("/posts/:id", middleware.AuthMiddleware(userService), communityHandler.DeletePost)
		api.GET("/posts/feed", middleware.AuthMiddleware(userService), communityHandler.GetFeed)
		api.GET("/posts/explore", middleware.AuthMiddleware(userService), communityHandler.Explore)
		api.GET("/users/:id/posts", middleware.AuthMiddleware(userService), communityHandler.GetUserPosts)

		// 点赞和评论
		api.POST("/posts/:id/likes", middleware.AuthMiddleware(userService), communityHandler.LikePost)
		api.DELETE("/posts/:id/likes", middleware.AuthMiddleware(userService), communityHandler.UnlikePost)
		api.POST("/posts/:id/comments", middleware.AuthMiddleware(userService), communityHandler.CreateComment)
		api.GET("/posts/:id/comments", middleware.AuthMiddleware(userService), communityHandler.ListComments)

		// 关注相关路由
		api.POST("/users/:id/follow", middleware.AuthMiddleware(userService), communityHandler.FollowUser)
		api.DELETE("/users/:id/follow", middleware.AuthMiddleware(userService), communityHandler.UnfollowUser)
		api.GET("/users/:id/followers", middleware.AuthMiddleware(userService), communityHandler.GetFollowers)
		api.GET("/users/:id/following", middleware.AuthMiddleware(userService), communityHandler.GetFollowing)
		api.GET("/users/:id/follow/status", middleware.AuthMiddleware(userService), communityHandler.GetFollowStatus)

		// 私信相关路由
		chatRoutes := api.Group("/chat")
		chatRoutes.Use(middleware.AuthMiddleware(userService))
		{
			chatRoutes.POST("/send", chatHandler.SendMessage)
			chatRoutes.GET("/conversations", chatHandler.GetConversations)
			chatRoutes.GET("/:userId", chatHandler.GetMessages)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
