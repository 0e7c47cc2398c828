package borrow

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// TxManager 事务执行器
// *mysql.TxManager实现此接口;单元测试用假实现替代
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BorrowBookUseCase 借书用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、业务规则校验、事件发布
type BorrowBookUseCase struct {
	borrowRepo borrow.Repository
	bookRepo   book.Repository
	userRepo   user.Repository
	txManager  TxManager
	publisher  *mq.Publisher // 可选,nil表示不发布事件
	maxActive  int           // 每用户在借上限
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	borrowRepo borrow.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	publisher *mq.Publisher,
	maxActive int,
) *BorrowBookUseCase {
	if maxActive <= 0 {
		maxActive = 1
	}
	return &BorrowBookUseCase{
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		publisher:  publisher,
		maxActive:  maxActive,
	}
}

// BorrowBookResponse 借书响应
type BorrowBookResponse struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	BookTitle  string `json:"book_title"`
	BorrowTime string `json:"borrow_time"`
}

// Execute 执行借书
// 教学重点:防止一书多借的完整流程
//
// 核心问题:并发借阅
// 场景:一本书在架,两人同时点借阅
// 错误实现:
//  1. 查询图书状态 → available
//  2. 判断可不可借 → 可借
//  3. 更新状态、插入记录
//     结果:两个请求都通过了步骤2,一本书"借"给了两个人
//
// 正确实现:悲观锁
//  1. SELECT FOR UPDATE 锁定用户行(串行化配额检查)
//  2. SELECT FOR UPDATE 锁定图书行(串行化状态变更)
//  3. 检查配额、检查状态
//  4. 插入借阅记录 + 图书状态改为borrowed
//  5. COMMIT释放锁
//
// 锁顺序约定:先用户后图书,所有写路径保持一致,避免交叉死锁。
// 仍可能与其他事务死锁(MySQL会选择牺牲者回滚),遇到1213/1205
// 重试一次,重试仍失败则返回"系统繁忙"
func (uc *BorrowBookUseCase) Execute(ctx context.Context, userID, bookID uint) (*BorrowBookResponse, error) {
	start := time.Now()

	resp, err := uc.execute(ctx, userID, bookID)
	if err != nil && mysql.IsSerializationError(err) {
		// 写冲突重试一次
		metrics.BorrowTxRetriesTotal.Inc()
		resp, err = uc.execute(ctx, userID, bookID)
		if err != nil && mysql.IsSerializationError(err) {
			err = apperrors.ErrTxConflict
		}
	}

	// 指标埋点
	metrics.BorrowDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BorrowsFailedTotal.WithLabelValues(failReason(err)).Inc()
		return nil, err
	}
	metrics.BorrowsTotal.Inc()
	metrics.ActiveLoans.Inc()

	// 事件发布(best-effort,失败不影响借阅结果)
	uc.publishEvent("book.borrowed", map[string]interface{}{
		"record_id":   resp.RecordID,
		"book_id":     resp.BookID,
		"user_id":     userID,
		"borrow_time": resp.BorrowTime,
	})

	return resp, nil
}

// execute 单次借书事务
func (uc *BorrowBookUseCase) execute(ctx context.Context, userID, bookID uint) (*BorrowBookResponse, error) {
	var record *borrow.BorrowRecord
	var title string

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ========================================
		// 步骤1:锁定用户行(串行化配额检查)
		// ========================================
		// 教学要点:只锁图书不够——用户配额的检查对象是"该用户
		// 的未归还记录数",两个并发请求借不同的书时不会在图书行
		// 上相遇,必须在用户行上串行化
		u, err := uc.userRepo.LockByID(txCtx, userID)
		if err != nil {
			return err
		}

		// ========================================
		// 步骤2:配额检查
		// ========================================
		count, err := uc.borrowRepo.CountOpenByUser(txCtx, u.ID)
		if err != nil {
			return err
		}
		if count >= int64(uc.maxActive) {
			return borrow.ErrQuotaExceeded
		}

		// ========================================
		// 步骤3:锁定图书行(串行化状态变更)
		// ========================================
		// LockByID执行:SELECT * FROM books WHERE id = ? FOR UPDATE
		b, err := uc.bookRepo.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		// 检查状态必须在锁定后进行,否则并发请求都会看到available
		if err := b.MarkBorrowed(); err != nil {
			return err // ErrAlreadyBorrowed
		}

		// ========================================
		// 步骤4:插入借阅记录 + 更新图书状态
		// ========================================
		record = borrow.NewBorrowRecord(b.ID, u.ID)
		if err := uc.borrowRepo.Create(txCtx, record); err != nil {
			return err
		}
		if err := uc.bookRepo.Update(txCtx, b); err != nil {
			return err
		}

		title = b.Title
		return nil // COMMIT
	})

	if err != nil {
		return nil, err
	}

	return &BorrowBookResponse{
		RecordID:   record.ID,
		BookID:     record.BookID,
		BookTitle:  title,
		BorrowTime: record.BorrowTime.Format("2006-01-02 15:04:05"),
	}, nil
}

// publishEvent 发布领域事件(best-effort)
func (uc *BorrowBookUseCase) publishEvent(routingKey string, payload map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(routingKey, payload); err != nil {
		log.Printf("事件发布失败: routing_key=%s, err=%v", routingKey, err)
	}
}

// failReason 借阅失败原因 → 指标label
// label基数必须有界,只区分几类业务原因
func failReason(err error) string {
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeAlreadyBorrowed):
		return "already_borrowed"
	case apperrors.IsCode(err, apperrors.ErrCodeBorrowQuota):
		return "quota_exceeded"
	case apperrors.IsCode(err, apperrors.ErrCodeBookNotFound):
		return "book_not_found"
	case apperrors.IsCode(err, apperrors.ErrCodeTxConflict):
		return "tx_conflict"
	default:
		return "other"
	}
}
