//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/library/internal/application/book"
	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	domainborrow "github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,   // 用户仓储
	mysql.NewBookRepository,   // 图书仓储
	mysql.NewBorrowRepository, // 借阅记录仓储
	mysql.NewTxManager,        // 事务管理器
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
	book.NewService, // 图书领域服务
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	provideLoginUseCase,
	provideLogoutUseCase,
	appuser.NewCreateUserUseCase,
	appuser.NewGetProfileUseCase,
	provideChangePasswordUseCase,
	appuser.NewUpdateRoleUseCase,
	appuser.NewListUsersUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	provideBorrowBookUseCase,
	provideReturnBookUseCase,
	appborrow.NewListRecordsUseCase,
	appborrow.NewUpdateNoteUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideBlacklistBreaker,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewBorrowHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 有些依赖的构造函数参数需要从Config中提取（Duration、上限值等），
// Wire无法自动拆解Config，需要手动编写Provider

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideBlacklistBreaker 创建黑名单查询熔断器
func provideBlacklistBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("token-blacklist", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// providePublisher 创建RabbitMQ事件发布器
// MQ未启用或连接失败时返回nil（借还用例对nil安全）
func providePublisher(cfg *config.Config) *mq.Publisher {
	if !cfg.MQ.Enabled {
		return nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil
	}
	return publisher
}

// provideLoginUseCase 登录用例（会话TTL取Refresh Token有效期）
func provideLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
}

// provideLogoutUseCase 登出用例（黑名单TTL取Access Token有效期）
func provideLogoutUseCase(sessionStore *redis.SessionStore, cfg *config.Config) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
}

// provideChangePasswordUseCase 修改密码用例
func provideChangePasswordUseCase(
	userService user.Service,
	userRepo user.Repository,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *appuser.ChangePasswordUseCase {
	return appuser.NewChangePasswordUseCase(userService, userRepo, sessionStore, cfg.JWT.AccessTokenExpire)
}

// provideBorrowBookUseCase 借书用例（配额上限取自配置）
func provideBorrowBookUseCase(
	borrowRepo domainborrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager *mysql.TxManager,
	cfg *config.Config,
) *appborrow.BorrowBookUseCase {
	return appborrow.NewBorrowBookUseCase(
		borrowRepo, bookRepo, userRepo, txManager,
		providePublisher(cfg), cfg.Borrow.MaxActive,
	)
}

// provideReturnBookUseCase 还书用例
func provideReturnBookUseCase(
	borrowRepo domainborrow.Repository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
	cfg *config.Config,
) *appborrow.ReturnBookUseCase {
	return appborrow.NewReturnBookUseCase(borrowRepo, bookRepo, txManager, providePublisher(cfg))
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// Wire会按依赖链自动调用所有构造函数：
// *gin.Engine ← Handler ← UseCase ← Service ← Repository ← *gorm.DB ← *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	borrowHandler *handler.BorrowHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, borrowHandler, authMiddleware)
	return r
}
