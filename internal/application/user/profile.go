package user

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
)

// GetProfileUseCase 查询当前用户信息用例
type GetProfileUseCase struct {
	userRepo user.Repository
}

// NewGetProfileUseCase 创建用例
func NewGetProfileUseCase(userRepo user.Repository) *GetProfileUseCase {
	return &GetProfileUseCase{userRepo: userRepo}
}

// Execute 查询用户信息
func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// ChangePasswordUseCase 修改密码用例
// 设计说明：
// 1. 原密码校验、新密码强度校验在领域服务完成
// 2. 修改成功后将当前Access Token加入黑名单，
//    强制旧Token失效（密码泄露场景下的止损手段）
type ChangePasswordUseCase struct {
	userService  user.Service
	userRepo     user.Repository
	sessionStore *redis.SessionStore
	blacklistTTL time.Duration
}

// NewChangePasswordUseCase 创建用例
func NewChangePasswordUseCase(
	userService user.Service,
	userRepo user.Repository,
	sessionStore *redis.SessionStore,
	blacklistTTL time.Duration,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userService:  userService,
		userRepo:     userRepo,
		sessionStore: sessionStore,
		blacklistTTL: blacklistTTL,
	}
}

// Execute 执行修改密码
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, userID uint, oldPassword, newPassword, accessToken string) error {
	// 1. 查询用户
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	// 2. 调用领域服务修改密码
	if _, err := uc.userService.ChangePassword(ctx, u, oldPassword, newPassword); err != nil {
		return err
	}

	// 3. 旧Token加入黑名单（失败只记录日志，不影响修改结果）
	if accessToken != "" {
		if err := uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.blacklistTTL); err != nil {
			log.Printf("密码修改后加入黑名单失败: user_id=%d, err=%v", userID, err)
		}
	}

	return nil
}
