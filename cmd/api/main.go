package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/library/internal/application/book"
	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/response"
	"github.com/xiebiao/library/pkg/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供Wire版本的组装，二选一）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化可观测性组件
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("library-api", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer shutdown(context.Background())
	}

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. RabbitMQ事件发布器（可选）
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			// 事件发布是best-effort能力，MQ不可用不阻塞启动
			log.Printf("连接RabbitMQ失败，借还事件不发布: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// 6. 依赖注入（手动组装）
	// 学习要点：依赖注入链
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	borrowRepo := mysql.NewBorrowRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 黑名单查询熔断器：连续5次失败打开，30秒后半开探测
	blacklistBreaker := newBlacklistBreaker()

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
	createUserUseCase := appuser.NewCreateUserUseCase(userService)
	getProfileUseCase := appuser.NewGetProfileUseCase(userRepo)
	changePasswordUseCase := appuser.NewChangePasswordUseCase(userService, userRepo, sessionStore, cfg.JWT.AccessTokenExpire)
	updateRoleUseCase := appuser.NewUpdateRoleUseCase(userService)
	listUsersUseCase := appuser.NewListUsersUseCase(userService)

	createBookUseCase := appbook.NewCreateBookUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)

	borrowBookUseCase := appborrow.NewBorrowBookUseCase(borrowRepo, bookRepo, userRepo, txManager, publisher, cfg.Borrow.MaxActive)
	returnBookUseCase := appborrow.NewReturnBookUseCase(borrowRepo, bookRepo, txManager, publisher)
	listRecordsUseCase := appborrow.NewListRecordsUseCase(borrowRepo)
	updateNoteUseCase := appborrow.NewUpdateNoteUseCase(borrowRepo)

	// 接口层
	userHandler := handler.NewUserHandler(
		loginUseCase, logoutUseCase, createUserUseCase,
		getProfileUseCase, changePasswordUseCase,
		updateRoleUseCase, listUsersUseCase, jwtManager,
	)
	bookHandler := handler.NewBookHandler(
		createBookUseCase, updateBookUseCase, deleteBookUseCase,
		listBooksUseCase, getBookUseCase,
	)
	borrowHandler := handler.NewBorrowHandler(
		borrowBookUseCase, returnBookUseCase,
		listRecordsUseCase, updateNoteUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore, blacklistBreaker)

	// 7. 初始管理员对账（幂等，失败则终止启动）
	bootstrapAdmin := appuser.NewBootstrapAdminUseCase(userService, cfg.Admin)
	if err := bootstrapAdmin.Execute(context.Background()); err != nil {
		log.Fatalf("初始管理员引导失败: %v", err)
	}

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 9. 注册路由
	registerRoutes(r, userHandler, bookHandler, borrowHandler, authMiddleware)

	// 10. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// newBlacklistBreaker 创建黑名单查询熔断器
func newBlacklistBreaker() *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker("token-blacklist", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	// 状态变化时记录日志并更新指标
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("熔断器[%s]状态变化: %s → %s", name, from, to)
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	})
	return cb
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 认证模块（公开接口）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", userHandler.RefreshToken)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 需要登录的路由
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 个人信息
			authorized.GET("/users/me", userHandler.GetProfile)
			authorized.PUT("/users/me/password", userHandler.ChangePassword)

			// 图书模块（所有登录用户可查）
			authorized.GET("/books", bookHandler.ListBooks)
			authorized.GET("/books/:id", bookHandler.GetBook)
			authorized.GET("/books/:id/records", borrowHandler.BookRecords)

			// 借还
			authorized.POST("/books/:id/borrow", borrowHandler.BorrowBook)
			authorized.POST("/books/:id/return", borrowHandler.ReturnBook)

			// 我的借阅记录
			authorized.GET("/borrow-records/my", borrowHandler.MyRecords)
			authorized.PUT("/borrow-records/:id/note", borrowHandler.UpdateNote)
		}

		// 管理员路由
		admin := v1.Group("")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			// 用户管理
			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.ListUsers)
			admin.PUT("/users/:id/role", userHandler.UpdateRole)

			// 图书管理
			admin.POST("/books", bookHandler.CreateBook)
			admin.PUT("/books/:id", bookHandler.UpdateBook)
			admin.DELETE("/books/:id", bookHandler.DeleteBook)

			// 借阅台账
			admin.GET("/borrow-records", borrowHandler.AllRecords)
		}
	}
}
