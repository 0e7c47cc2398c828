package user

import (
	"context"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 创建用户（注册/管理员建号共用）
	// 角色不合法返回ErrInvalidRole，用户名重复返回ErrUsernameDuplicate
	Register(ctx context.Context, username, password string, role Role) (*User, error)

	// Authenticate 用户名密码认证（登录）
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// ChangePassword 修改密码
	// 原密码校验失败返回ErrInvalidPassword
	ChangePassword(ctx context.Context, u *User, oldPassword, newPassword string) (*User, error)

	// UpdateRole 变更用户角色
	UpdateRole(ctx context.Context, userID uint, role Role) (*User, error)

	// ListUsers 查询全部用户（创建时间倒序）
	ListUsers(ctx context.Context) ([]*User, error)

	// EnsureAdmin 确保初始管理员存在（启动时对账，幂等）
	// 不存在则创建；已存在则重置密码并确保角色为admin，
	// 保证配置中的凭据始终生效
	EnsureAdmin(ctx context.Context, username, password string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 创建用户
// 业务规则：
// 1. 用户名格式校验（3-50个字符）
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 角色必须是{user, admin}之一
// 4. 密码bcrypt加密（cost=12）
// 5. 用户名唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, password string, role Role) (*User, error) {
	// 1. 用户名校验
	if len(username) < 3 || len(username) > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为3-50个字符")
	}

	// 2. 角色校验
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	// 3. 密码强度校验
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 4. 密码加密
	// 说明：
	// - bcrypt自动加盐，每次加密结果都不同（即使密码相同）
	// - cost=12是推荐值，平衡安全性与性能（cost每+1，耗时翻倍）
	// - 不要使用MD5/SHA1，已被证明不安全（彩虹表攻击）
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 5. 创建用户实体
	u := NewUser(username, string(hashedPassword), role)

	// 6. 持久化到数据库
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return u, nil
}

// Authenticate 用户名密码认证
// 业务规则：
// 1. 用户名必须存在
// 2. 密码必须正确
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	// 1. 根据用户名查找用户
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err // Repository已转换为ErrUserNotFound
	}

	// 2. 验证密码
	if err := verifyPassword(u.Password, password); err != nil {
		return nil, err
	}

	return u, nil
}

// ChangePassword 修改密码
// 业务规则：
// 1. 原密码必须验证通过（防止Token被盗后直接改密）
// 2. 新密码需满足强度要求
func (s *service) ChangePassword(ctx context.Context, u *User, oldPassword, newPassword string) (*User, error) {
	// 1. 验证原密码
	if err := verifyPassword(u.Password, oldPassword); err != nil {
		return nil, err
	}

	// 2. 新密码强度校验
	if err := validatePasswordStrength(newPassword); err != nil {
		return nil, err
	}

	// 3. 加密并更新
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}
	u.ChangePassword(string(hashedPassword))

	// 4. 持久化
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// UpdateRole 变更用户角色
func (s *service) UpdateRole(ctx context.Context, userID uint, role Role) (*User, error) {
	// 1. 角色校验
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	// 2. 查询用户
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. 变更角色并持久化
	if err := u.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// ListUsers 查询全部用户
func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// EnsureAdmin 确保初始管理员存在
// 对账逻辑：
// - 用户不存在 → 按配置创建admin角色用户
// - 用户已存在 → 重置密码哈希并强制角色为admin
// 两条路径都是幂等的，服务重复启动不会产生副作用
func (s *service) EnsureAdmin(ctx context.Context, username, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return apperrors.Wrap(err, "密码加密失败")
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUserNotFound) {
			admin := NewUser(username, string(hashedPassword), RoleAdmin)
			return s.repo.Create(ctx, admin)
		}
		return err
	}

	// 已存在：重置密码，确保配置中的密码生效
	existing.ChangePassword(string(hashedPassword))
	existing.Role = RoleAdmin
	return s.repo.Update(ctx, existing)
}

// verifyPassword 验证明文密码与哈希值是否匹配
func verifyPassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	// 长度校验
	if len(password) < 8 || len(password) > 20 {
		return ErrWeakPassword
	}

	// 必须包含字母
	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	// 必须包含数字
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}

	return nil
}
