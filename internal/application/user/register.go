package user

import (
	"context"

	"github.com/xiebiao/library/internal/domain/user"
)

// CreateUserUseCase 创建用户用例（管理员建号）
// 设计说明：
// 1. Application层负责用例编排，协调多个领域服务
// 2. 读者账号由管理员统一开通（图书馆业务，不开放自助注册）
// 3. 角色由管理员指定，默认普通用户
type CreateUserUseCase struct {
	userService user.Service
}

// NewCreateUserUseCase 创建用例
func NewCreateUserUseCase(userService user.Service) *CreateUserUseCase {
	return &CreateUserUseCase{
		userService: userService,
	}
}

// Execute 执行创建用户
// 返回：UserInfo（应用层DTO，不是领域实体）
func (uc *CreateUserUseCase) Execute(ctx context.Context, req CreateUserRequest) (*UserInfo, error) {
	role := user.Role(req.Role)
	if req.Role == "" {
		role = user.RoleUser
	}

	// 调用领域服务执行创建
	u, err := uc.userService.Register(ctx, req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}

	// 领域实体 → 应用层DTO
	// 说明：不直接返回领域实体，领域模型变更不影响API契约
	return toUserInfo(u), nil
}

// ListUsersUseCase 用户列表用例（管理员）
type ListUsersUseCase struct {
	userService user.Service
}

// NewListUsersUseCase 创建用例
func NewListUsersUseCase(userService user.Service) *ListUsersUseCase {
	return &ListUsersUseCase{userService: userService}
}

// Execute 查询全部用户
func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]*UserInfo, error) {
	users, err := uc.userService.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*UserInfo, len(users))
	for i, u := range users {
		infos[i] = toUserInfo(u)
	}
	return infos, nil
}

// UpdateRoleUseCase 变更用户角色用例（管理员）
type UpdateRoleUseCase struct {
	userService user.Service
}

// NewUpdateRoleUseCase 创建用例
func NewUpdateRoleUseCase(userService user.Service) *UpdateRoleUseCase {
	return &UpdateRoleUseCase{userService: userService}
}

// Execute 执行角色变更
func (uc *UpdateRoleUseCase) Execute(ctx context.Context, userID uint, role string) (*UserInfo, error) {
	u, err := uc.userService.UpdateRole(ctx, userID, user.Role(role))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// =========================================
// 应用层DTO（数据传输对象）
// =========================================

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string
	Password string
	Role     string // user | admin，空表示普通用户
}

// UserInfo 用户信息
// 说明：不返回密码字段（安全考虑）
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// toUserInfo 领域实体 → 应用层DTO
func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
