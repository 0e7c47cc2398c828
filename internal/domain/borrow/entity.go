package borrow

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// BorrowRecord 借阅记录实体（借阅台账）
// 设计说明：
// 1. 记录只追加、只关闭，永不删除——台账是审计链，归还后记录依然保留
// 2. ReturnTime为nil表示"未归还"（在借），非nil表示已归还
// 3. 一本书同一时刻至多一条未归还记录（与Book.Status在同一事务内维护）
// 4. Book/User是查询时Preload的关联快照，写路径不依赖它们
type BorrowRecord struct {
	ID         uint
	BookID     uint
	UserID     uint
	BorrowTime time.Time
	ReturnTime *time.Time // nil表示未归还
	Note       string     // 借阅备注（可选）
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// 关联数据（查询时加载）
	Book *book.Book
	User *user.User
}

// NewBorrowRecord 创建借阅记录（工厂方法）
func NewBorrowRecord(bookID, userID uint) *BorrowRecord {
	now := time.Now()
	return &BorrowRecord{
		BookID:     bookID,
		UserID:     userID,
		BorrowTime: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOpen 是否未归还（在借）
func (r *BorrowRecord) IsOpen() bool {
	return r.ReturnTime == nil
}

// Close 关闭记录（归还，领域行为）
// 重复归还返回ErrRecordClosed
func (r *BorrowRecord) Close() error {
	if r.ReturnTime != nil {
		return ErrRecordClosed
	}
	now := time.Now()
	r.ReturnTime = &now
	r.UpdatedAt = now
	return nil
}

// UpdateNote 更新借阅备注（领域行为）
func (r *BorrowRecord) UpdateNote(note string) {
	r.Note = note
	r.UpdatedAt = time.Now()
}
