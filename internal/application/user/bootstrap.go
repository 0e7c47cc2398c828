package user

import (
	"context"
	"log"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
)

// BootstrapAdminUseCase 初始管理员引导用例
// 设计说明：
// 1. 服务启动时执行一次，按配置对账管理员账号
// 2. 幂等：不存在则创建，已存在则重置密码并确保角色为admin
// 3. 失败直接返回错误，没有管理员的系统无法开通读者账号
type BootstrapAdminUseCase struct {
	userService user.Service
	cfg         config.AdminConfig
}

// NewBootstrapAdminUseCase 创建引导用例
func NewBootstrapAdminUseCase(userService user.Service, cfg config.AdminConfig) *BootstrapAdminUseCase {
	return &BootstrapAdminUseCase{
		userService: userService,
		cfg:         cfg,
	}
}

// Execute 执行管理员对账
func (uc *BootstrapAdminUseCase) Execute(ctx context.Context) error {
	if err := uc.userService.EnsureAdmin(ctx, uc.cfg.Username, uc.cfg.Password); err != nil {
		return err
	}

	log.Printf("✓ 初始管理员就绪: %s", uc.cfg.Username)
	return nil
}
