package borrow

import (
	"context"
)

// ListQuery 借阅记录查询条件
type ListQuery struct {
	UserID uint // 按借阅人过滤（0表示不过滤）
	BookID uint // 按图书过滤（0表示不过滤）
	Open   bool // true表示只查未归还记录
	Page   int
	Size   int
}

// Repository 借阅记录仓储接口
// 实现在infrastructure/persistence/mysql层
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, r *BorrowRecord) error

	// FindByID 根据ID查找记录
	// 不存在时返回ErrRecordNotFound
	FindByID(ctx context.Context, id uint) (*BorrowRecord, error)

	// FindOpenByBook 查找某图书的未归还记录
	// 不存在时返回ErrRecordNotFound
	// 注意：借阅/归还事务内调用时，图书行已被FOR UPDATE锁住，
	// 此查询无需再加锁
	FindOpenByBook(ctx context.Context, bookID uint) (*BorrowRecord, error)

	// CountOpenByUser 统计某用户的未归还记录数（配额检查）
	CountOpenByUser(ctx context.Context, userID uint) (int64, error)

	// List 分页查询借阅记录（借阅时间倒序，Preload关联图书与用户）
	List(ctx context.Context, query ListQuery) ([]*BorrowRecord, int64, error)

	// Update 更新记录（关闭、改备注）
	Update(ctx context.Context, r *BorrowRecord) error
}
