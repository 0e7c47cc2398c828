package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如馆藏编号重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		BookNo:    b.BookNo,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Publisher: b.Publisher,
		Status:    string(b.Status),
	}

	// 2. 插入数据库
	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		// 检查是否为馆藏编号重复错误
		if isDuplicateError(err) {
			return book.ErrBookNoDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByBookNo 根据馆藏编号查找图书
func (r *bookRepository) FindByBookNo(ctx context.Context, bookNo string) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).WithContext(ctx).Where("book_no = ?", bookNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, query book.ListQuery) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	// 构建查询
	q := r.getDB(ctx).WithContext(ctx).Model(&BookModel{})

	// 关键词搜索(标题、作者、馆藏编号)
	if query.Keyword != "" {
		keyword := "%" + query.Keyword + "%"
		q = q.Where("title LIKE ? OR author LIKE ? OR book_no LIKE ?", keyword, keyword, keyword)
	}

	// 状态过滤
	if query.Status != "" {
		q = q.Where("status = ?", string(query.Status))
	}

	// 查询总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 分页查询(创建时间倒序)
	offset := (query.Page - 1) * query.Size
	err := q.Order("created_at DESC").
		Limit(query.Size).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	// 转换为领域实体
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, total, nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	db := r.getDB(ctx)

	result := db.WithContext(ctx).Model(&BookModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"book_no":    b.BookNo,
		"title":      b.Title,
		"author":     b.Author,
		"isbn":       b.ISBN,
		"publisher":  b.Publisher,
		"status":     string(b.Status),
		"updated_at": b.UpdatedAt,
	})

	if result.Error != nil {
		// 馆藏编号变更可能撞上其他图书的编号,UNIQUE索引兜底
		if isDuplicateError(result.Error) {
			return book.ErrBookNoDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// Delete 删除图书(软删除)
// 说明:软删除保留行数据,历史借阅记录仍可Unscoped关联到此书
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).WithContext(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// LockByID 悲观锁查询图书(SELECT FOR UPDATE)
// 教学要点:
// 1. 必须在事务内调用(getDB从context提取事务DB)
// 2. 借阅/归还流程锁定图书行,保证"检查状态→变更状态"原子执行,
//    两个并发借阅请求只会有一个看到available
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:        model.ID,
		BookNo:    model.BookNo,
		Title:     model.Title,
		Author:    model.Author,
		ISBN:      model.ISBN,
		Publisher: model.Publisher,
		Status:    book.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
