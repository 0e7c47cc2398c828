package book

import (
	"context"
)

// ListQuery 图书列表查询条件
// 设计说明：过滤条件是AND语义，零值字段表示不过滤
type ListQuery struct {
	Keyword string // 标题/作者/编号模糊匹配
	Status  Status // 按状态过滤（空表示全部）
	Page    int    // 页码，从1开始
	Size    int    // 每页数量
}

// Repository 图书仓储接口
// 接口定义在domain层，实现在infrastructure/persistence/mysql层
type Repository interface {
	// Create 创建图书
	// 馆藏编号重复时返回ErrBookNoDuplicate
	Create(ctx context.Context, b *Book) error

	// FindByID 根据ID查找图书
	// 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByBookNo 根据馆藏编号查找图书
	// 不存在时返回ErrBookNotFound
	FindByBookNo(ctx context.Context, bookNo string) (*Book, error)

	// List 分页查询图书
	List(ctx context.Context, query ListQuery) ([]*Book, int64, error)

	// Update 更新图书
	Update(ctx context.Context, b *Book) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// LockByID 悲观锁查询图书（SELECT FOR UPDATE，必须在事务内调用）
	// 用途：借阅/归还时串行化同一本书的状态变更，防止并发借出同一本书
	LockByID(ctx context.Context, id uint) (*Book, error)
}
