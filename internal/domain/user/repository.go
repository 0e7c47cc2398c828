package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 这样domain层不依赖任何外部框架（GORM、sqlx等）
// 4. 便于单元测试（Mock此接口）
type Repository interface {
	// Create 创建用户
	// 注意：如果用户名已存在，应返回ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByUsername 根据用户名查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*User, error)

	// List 查询全部用户（创建时间倒序）
	List(ctx context.Context) ([]*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error

	// LockByID 悲观锁查询用户（SELECT FOR UPDATE，必须在事务内调用）
	// 用途：借阅时串行化同一用户的配额检查，防止并发借阅突破上限
	LockByID(ctx context.Context, id uint) (*User, error)
}
