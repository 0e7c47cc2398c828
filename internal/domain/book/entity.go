package book

import (
	"time"
)

// Status 图书状态
// 设计说明：状态是封闭枚举{available, borrowed}，状态迁移只有两条边：
// available --借出--> borrowed，borrowed --归还--> available。
// 状态变更必须与借阅记录的创建/关闭在同一个数据库事务内完成。
type Status string

const (
	StatusAvailable Status = "available" // 在架可借
	StatusBorrowed  Status = "borrowed"  // 已借出
)

// Valid 校验状态合法性
func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusBorrowed
}

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. BookNo是馆藏编号（业务主键），全馆唯一，由数据库UNIQUE索引保证
// 2. ISBN/Publisher是可选的著录信息，允许为空
// 3. Status表示当前借阅状态，一本书同一时刻至多被一人持有
type Book struct {
	ID        uint
	BookNo    string // 馆藏编号（唯一）
	Title     string
	Author    string
	ISBN      string // 可选
	Publisher string // 可选
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建新图书（工厂方法）
// 新建图书默认在架可借
func NewBook(bookNo, title, author, isbn, publisher string) *Book {
	now := time.Now()
	return &Book{
		BookNo:    bookNo,
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Publisher: publisher,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAvailable 是否在架可借
func (b *Book) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// MarkBorrowed 标记为已借出（领域行为）
// 仅在借阅事务内调用，调用前必须已确认图书在架
func (b *Book) MarkBorrowed() error {
	if b.Status != StatusAvailable {
		return ErrAlreadyBorrowed
	}
	b.Status = StatusBorrowed
	b.UpdatedAt = time.Now()
	return nil
}

// MarkReturned 标记为已归还（领域行为）
func (b *Book) MarkReturned() {
	b.Status = StatusAvailable
	b.UpdatedAt = time.Now()
}

// UpdateInfo 更新著录信息（领域行为）
// 注意：BookNo和Status不通过此方法修改
func (b *Book) UpdateInfo(title, author, isbn, publisher string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if isbn != "" {
		b.ISBN = isbn
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	b.UpdatedAt = time.Now()
}
