package user

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证用户名密码
// 2. 生成JWT Token对（角色写入Claims，鉴权中间件免查库）
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
	sessionTTL   time.Duration
}

// NewLoginUseCase 创建登录用例
// sessionTTL取Refresh Token有效期（会话与Refresh Token同寿命）
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	sessionTTL time.Duration,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证用户名密码（调用领域服务）
	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, err
	}

	// 3. 保存会话到Redis
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"login_at": time.Now().Unix(),
	}

	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.sessionTTL); err != nil {
		// 会话保存失败不影响登录，只记录日志
		log.Printf("保存会话失败: user_id=%d, err=%v", u.ID, err)
	}

	// 4. 返回登录响应
	return &LoginResponse{
		User:         *toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore *redis.SessionStore
	blacklistTTL time.Duration
}

// NewLogoutUseCase 创建登出用例
// blacklistTTL取Access Token有效期（Token自然过期后黑名单无需保留）
func NewLogoutUseCase(sessionStore *redis.SessionStore, blacklistTTL time.Duration) *LogoutUseCase {
	return &LogoutUseCase{
		sessionStore: sessionStore,
		blacklistTTL: blacklistTTL,
	}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	// 1. 删除会话
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	// 2. 将Access Token加入黑名单（防止Token在过期前继续使用）
	if err := uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.blacklistTTL); err != nil {
		return err
	}

	return nil
}
