package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如用户名重复),转换为业务错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	// 1. 领域实体 → GORM模型
	model := &UserModel{
		Username: u.Username,
		Password: u.Password,
		Role:     string(u.Role),
	}

	// 2. 插入数据库
	db := r.getDB(ctx)
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		// 检查是否为用户名重复错误
		if isDuplicateError(err) {
			return user.ErrUsernameDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	// 3. 回填自增ID
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByUsername 根据用户名查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel
	err := r.getDB(ctx).WithContext(ctx).Where("username = ?", username).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// List 查询全部用户(创建时间倒序)
func (r *userRepository) List(ctx context.Context) ([]*user.User, error) {
	var models []UserModel
	err := r.getDB(ctx).WithContext(ctx).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = toUserEntity(&models[i])
	}
	return users, nil
}

// Update 更新用户信息
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	db := r.getDB(ctx)

	result := db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"password":   u.Password,
		"role":       string(u.Role),
		"updated_at": u.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新用户失败")
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// LockByID 悲观锁查询用户(SELECT FOR UPDATE)
// 教学要点:
// 1. 必须在事务内调用(getDB从context提取事务DB)
// 2. 借阅流程先锁用户行,把同一用户的并发借阅串行化,
//    配额检查(count未归还记录)才不会出现"同时都数到0"的竞态
func (r *userRepository) LockByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "锁定用户失败")
	}

	return toUserEntity(&model), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Username:  model.Username,
		Password:  model.Password,
		Role:      user.Role(model.Role),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
