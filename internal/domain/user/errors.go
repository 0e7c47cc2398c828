package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrUsernameDuplicate 用户名已存在
	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeUsernameDuplicate, "用户名已存在")

	// ErrInvalidRole 无效的角色
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidRole, "无效的角色")

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.New(apperrors.ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// ErrInvalidPassword 密码错误
	ErrInvalidPassword = apperrors.New(apperrors.ErrCodeInvalidPassword, "密码错误")
)
