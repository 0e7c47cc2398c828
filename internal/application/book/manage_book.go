package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// CreateBookUseCase 新增图书用例（管理员）
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 新增图书请求
type CreateBookRequest struct {
	BookNo    string
	Title     string
	Author    string
	ISBN      string // 可选
	Publisher string // 可选
}

// Execute 执行新增图书
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookInfo, error) {
	b, err := uc.bookService.CreateBook(ctx, req.BookNo, req.Title, req.Author, req.ISBN, req.Publisher)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// UpdateBookUseCase 更新图书用例（管理员）
// 说明：可修改馆藏编号和著录信息，借阅状态不在此修改
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 更新图书请求（空字段不更新）
type UpdateBookRequest struct {
	BookNo    string // 变更时校验与其他图书不冲突
	Title     string
	Author    string
	ISBN      string
	Publisher string
}

// Execute 执行更新图书
func (uc *UpdateBookUseCase) Execute(ctx context.Context, bookID uint, req UpdateBookRequest) (*BookInfo, error) {
	b, err := uc.bookService.UpdateBook(ctx, bookID, req.BookNo, req.Title, req.Author, req.ISBN, req.Publisher)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// DeleteBookUseCase 删除图书用例（管理员）
// 业务规则：借阅中的图书禁止删除
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 执行删除图书
func (uc *DeleteBookUseCase) Execute(ctx context.Context, bookID uint) error {
	return uc.bookService.DeleteBook(ctx, bookID)
}
