package borrow

import (
	"context"
	"log"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// ReturnBookUseCase 还书用例
// 业务规则:
// 1. 只有借阅人本人(或管理员代办)才能归还
// 2. 归还 = 关闭未归还记录 + 图书状态改回available,同一事务
// 3. 重复归还/归还未借出的书 → 业务错误,不产生副作用
type ReturnBookUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	txManager  TxManager
	publisher  *mq.Publisher
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher *mq.Publisher,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
		publisher:  publisher,
	}
}

// ReturnBookResponse 还书响应
type ReturnBookResponse struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	ReturnTime string `json:"return_time"`
}

// Execute 执行还书
// isAdmin=true时跳过借阅人校验(管理员代办归还)
func (uc *ReturnBookUseCase) Execute(ctx context.Context, userID, bookID uint, isAdmin bool) (*ReturnBookResponse, error) {
	resp, err := uc.execute(ctx, userID, bookID, isAdmin)
	if err != nil && mysql.IsSerializationError(err) {
		// 写冲突重试一次(与借书对称)
		metrics.BorrowTxRetriesTotal.Inc()
		resp, err = uc.execute(ctx, userID, bookID, isAdmin)
		if err != nil && mysql.IsSerializationError(err) {
			err = apperrors.ErrTxConflict
		}
	}

	if err != nil {
		return nil, err
	}

	metrics.ReturnsTotal.Inc()
	metrics.ActiveLoans.Dec()

	// 事件发布(best-effort)
	if uc.publisher != nil {
		payload := map[string]interface{}{
			"record_id":   resp.RecordID,
			"book_id":     resp.BookID,
			"user_id":     userID,
			"return_time": resp.ReturnTime,
		}
		if err := uc.publisher.Publish("book.returned", payload); err != nil {
			log.Printf("事件发布失败: routing_key=book.returned, err=%v", err)
		}
	}

	return resp, nil
}

// execute 单次还书事务
func (uc *ReturnBookUseCase) execute(ctx context.Context, userID, bookID uint, isAdmin bool) (*ReturnBookResponse, error) {
	var record *borrow.BorrowRecord

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定图书行(与借书在同一行上串行化)
		b, err := uc.bookRepo.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		// 2. 查找未归还记录
		// 图书行已锁定,借书事务无法并发插入新记录
		rec, err := uc.borrowRepo.FindOpenByBook(txCtx, b.ID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeRecordNotFound) {
				// 没有未归还记录:重复归还或归还未借出的书
				return borrow.ErrNotBorrower
			}
			return err
		}

		// 3. 借阅人校验
		if !isAdmin && rec.UserID != userID {
			return borrow.ErrNotBorrower
		}

		// 4. 关闭记录 + 图书状态改回available
		if err := rec.Close(); err != nil {
			return err
		}
		if err := uc.borrowRepo.Update(txCtx, rec); err != nil {
			return err
		}

		b.MarkReturned()
		if err := uc.bookRepo.Update(txCtx, b); err != nil {
			return err
		}

		record = rec
		return nil // COMMIT
	})

	if err != nil {
		return nil, err
	}

	return &ReturnBookResponse{
		RecordID:   record.ID,
		BookID:     record.BookID,
		ReturnTime: record.ReturnTime.Format("2006-01-02 15:04:05"),
	}, nil
}
