package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// ListBooksUseCase 图书列表用例
// 说明：所有登录用户都可以查询书目（读者找书、管理员盘点）
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Keyword string // 标题/作者/编号模糊匹配
	Status  string // available | borrowed，空表示全部
	Page    int
	Size    int
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	Books []*BookInfo `json:"books"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	query := book.ListQuery{
		Keyword: req.Keyword,
		Status:  book.Status(req.Status),
		Page:    req.Page,
		Size:    req.Size,
	}

	books, total, err := uc.bookService.ListBooks(ctx, query)
	if err != nil {
		return nil, err
	}

	infos := make([]*BookInfo, len(books))
	for i, b := range books {
		infos[i] = toBookInfo(b)
	}

	// 分页参数兜底后的实际值由Service决定，这里回显请求值
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Size < 1 || req.Size > 100 {
		req.Size = 20
	}

	return &ListBooksResponse{
		Books: infos,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	}, nil
}

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, bookID uint) (*BookInfo, error) {
	b, err := uc.bookService.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// =========================================
// 应用层DTO
// =========================================

// BookInfo 图书信息
type BookInfo struct {
	ID        uint   `json:"id"`
	BookNo    string `json:"book_no"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// toBookInfo 领域实体 → 应用层DTO
func toBookInfo(b *book.Book) *BookInfo {
	return &BookInfo{
		ID:        b.ID,
		BookNo:    b.BookNo,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Publisher: b.Publisher,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
