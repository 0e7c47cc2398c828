package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrBookNoDuplicate 馆藏编号已存在
	ErrBookNoDuplicate = apperrors.New(apperrors.ErrCodeBookNoDuplicate, "图书编号已存在")

	// ErrAlreadyBorrowed 图书已被借出
	ErrAlreadyBorrowed = apperrors.New(apperrors.ErrCodeAlreadyBorrowed, "图书已被借出")

	// ErrBookBorrowed 图书借阅中，禁止删除
	ErrBookBorrowed = apperrors.New(apperrors.ErrCodeBookBorrowed, "图书借阅中，无法删除")
)
