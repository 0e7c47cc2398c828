package borrow

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrRecordNotFound 借阅记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodeRecordNotFound, "借阅记录不存在")

	// ErrQuotaExceeded 超出借阅上限
	ErrQuotaExceeded = apperrors.New(apperrors.ErrCodeBorrowQuota, "已达借阅上限，请先归还")

	// ErrNotBorrower 当前用户未借阅此图书
	ErrNotBorrower = apperrors.New(apperrors.ErrCodeNotBorrower, "您未借阅此图书")

	// ErrRecordClosed 记录已归还，不能重复关闭
	ErrRecordClosed = apperrors.New(apperrors.ErrCodeBusinessError, "该记录已归还")
)
