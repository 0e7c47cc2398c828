package book

import (
	"context"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 图书领域服务
type Service interface {
	// CreateBook 新增图书
	CreateBook(ctx context.Context, bookNo, title, author, isbn, publisher string) (*Book, error)

	// GetBook 查询图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书
	ListBooks(ctx context.Context, query ListQuery) ([]*Book, int64, error)

	// UpdateBook 更新图书信息（空字段不更新）
	// 业务规则：馆藏编号变更时不得与其他在册图书冲突（返回ErrBookNoDuplicate）
	UpdateBook(ctx context.Context, id uint, bookNo, title, author, isbn, publisher string) (*Book, error)

	// DeleteBook 删除图书
	// 业务规则：借阅中的图书禁止删除（返回ErrBookBorrowed）
	DeleteBook(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService 创建图书服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 新增图书
// 业务规则：
// 1. 馆藏编号、书名、作者必填
// 2. 馆藏编号唯一性由数据库UNIQUE索引保证
func (s *service) CreateBook(ctx context.Context, bookNo, title, author, isbn, publisher string) (*Book, error) {
	if bookNo == "" || title == "" || author == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "图书编号、书名、作者不能为空")
	}

	b := NewBook(bookNo, title, author, isbn, publisher)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBook 查询图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书
func (s *service) ListBooks(ctx context.Context, query ListQuery) ([]*Book, int64, error) {
	// 分页参数兜底
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Size < 1 || query.Size > 100 {
		query.Size = 20
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, 0, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的图书状态")
	}

	return s.repo.List(ctx, query)
}

// UpdateBook 更新图书信息
// 业务规则：
// 1. 空字段不更新
// 2. 馆藏编号变更需先按编号查重,与其他图书冲突时拒绝;
//    查重到写入之间的并发窗口由UNIQUE索引兜底(Update同样返回ErrBookNoDuplicate)
func (s *service) UpdateBook(ctx context.Context, id uint, bookNo, title, author, isbn, publisher string) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if bookNo != "" && bookNo != b.BookNo {
		existing, err := s.repo.FindByBookNo(ctx, bookNo)
		if err == nil && existing.ID != id {
			return nil, ErrBookNoDuplicate
		}
		if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeBookNotFound) {
			return nil, err
		}
		b.BookNo = bookNo
	}

	b.UpdateInfo(title, author, isbn, publisher)
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// DeleteBook 删除图书
// 业务规则：借阅中的图书禁止删除
// 说明：图书状态与未归还记录在同一事务内维护，
// Status==borrowed等价于存在未归还的借阅记录，因此只需检查状态
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if b.Status == StatusBorrowed {
		return ErrBookBorrowed
	}

	return s.repo.Delete(ctx, id)
}
