package user

import (
	"time"
)

// Role 用户角色
// 设计说明：角色是封闭枚举{user, admin}，以明确的守卫函数做权限门禁，
// 不用继承或多态分发
type Role string

const (
	RoleUser  Role = "user"  // 普通用户
	RoleAdmin Role = "admin" // 管理员
)

// Valid 校验角色合法性
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
// 4. 用户不会被删除（借阅记录永久引用用户，删除会破坏审计链）
type User struct {
	ID        uint
	Username  string
	Password  string // bcrypt哈希值
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword string, role Role) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 判断是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ChangeRole 变更角色（领域行为）
func (u *User) ChangeRole(role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// ChangePassword 更新密码哈希（领域行为）
// hashedPassword必须是bcrypt加密后的密码，明文校验在Service层完成
func (u *User) ChangePassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedAt = time.Now()
}
