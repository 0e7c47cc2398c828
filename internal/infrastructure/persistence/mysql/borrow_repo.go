package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// borrowRepository 借阅记录仓储实现(MySQL)
// 教学要点:
// 1. 查询时使用Preload预加载图书与用户,避免N+1问题
// 2. 图书Preload使用Unscoped,软删除的图书在历史记录中仍然可见
// 3. 事务通过context传递
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository 创建借阅记录仓储
func NewBorrowRepository(db *gorm.DB) borrow.Repository {
	return &borrowRepository{db: db}
}

// Create 创建借阅记录
// 必须在借阅事务中调用(通过getDB从context获取事务DB)
func (r *borrowRepository) Create(ctx context.Context, rec *borrow.BorrowRecord) error {
	model := &BorrowRecordModel{
		BookID:     rec.BookID,
		UserID:     rec.UserID,
		BorrowTime: rec.BorrowTime,
		ReturnTime: rec.ReturnTime,
		Note:       rec.Note,
	}

	db := r.getDB(ctx)
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	rec.ID = model.ID
	rec.CreatedAt = model.CreatedAt
	rec.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找记录
func (r *borrowRepository) FindByID(ctx context.Context, id uint) (*borrow.BorrowRecord, error) {
	var model BorrowRecordModel
	err := r.getDB(ctx).WithContext(ctx).
		Preload("Book", withDeletedBooks).
		Preload("User").
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toBorrowEntity(&model), nil
}

// FindOpenByBook 查找某图书的未归还记录
// 借阅/归还事务内调用时图书行已被FOR UPDATE锁住,此查询无需再加锁
func (r *borrowRepository) FindOpenByBook(ctx context.Context, bookID uint) (*borrow.BorrowRecord, error) {
	var model BorrowRecordModel
	db := r.getDB(ctx)
	err := db.WithContext(ctx).
		Where("book_id = ? AND return_time IS NULL", bookID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return toBorrowEntity(&model), nil
}

// CountOpenByUser 统计某用户的未归还记录数(配额检查)
// 借阅事务内调用时用户行已被FOR UPDATE锁住,计数结果在事务内稳定
func (r *borrowRepository) CountOpenByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	db := r.getDB(ctx)
	err := db.WithContext(ctx).Model(&BorrowRecordModel{}).
		Where("user_id = ? AND return_time IS NULL", userID).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅数量失败")
	}

	return count, nil
}

// List 分页查询借阅记录(借阅时间倒序)
func (r *borrowRepository) List(ctx context.Context, query borrow.ListQuery) ([]*borrow.BorrowRecord, int64, error) {
	var models []BorrowRecordModel
	var total int64

	q := r.getDB(ctx).WithContext(ctx).Model(&BorrowRecordModel{})

	if query.UserID != 0 {
		q = q.Where("user_id = ?", query.UserID)
	}
	if query.BookID != 0 {
		q = q.Where("book_id = ?", query.BookID)
	}
	if query.Open {
		q = q.Where("return_time IS NULL")
	}

	// 查询总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅记录总数失败")
	}

	// 分页查询(包含关联图书与用户)
	offset := (query.Page - 1) * query.Size
	err := q.Preload("Book", withDeletedBooks).
		Preload("User").
		Order("borrow_time DESC").
		Limit(query.Size).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅记录列表失败")
	}

	records := make([]*borrow.BorrowRecord, len(models))
	for i := range models {
		records[i] = toBorrowEntity(&models[i])
	}

	return records, total, nil
}

// Update 更新记录(归还、改备注)
func (r *borrowRepository) Update(ctx context.Context, rec *borrow.BorrowRecord) error {
	db := r.getDB(ctx)

	result := db.WithContext(ctx).Model(&BorrowRecordModel{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
		"return_time": rec.ReturnTime,
		"note":        rec.Note,
		"updated_at":  rec.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}

	if result.RowsAffected == 0 {
		return borrow.ErrRecordNotFound
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// withDeletedBooks Preload条件:包含软删除的图书
// 历史借阅记录关联的图书可能已下架,台账查询仍需展示书目信息
func withDeletedBooks(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// toBorrowEntity GORM模型 → 领域实体
func toBorrowEntity(model *BorrowRecordModel) *borrow.BorrowRecord {
	rec := &borrow.BorrowRecord{
		ID:         model.ID,
		BookID:     model.BookID,
		UserID:     model.UserID,
		BorrowTime: model.BorrowTime,
		ReturnTime: model.ReturnTime,
		Note:       model.Note,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	if model.Book != nil {
		rec.Book = toBookEntity(model.Book)
	}
	if model.User != nil {
		rec.User = toUserEntity(model.User)
	}
	return rec
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *borrowRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
