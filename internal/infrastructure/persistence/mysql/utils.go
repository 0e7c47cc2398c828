package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	// GORM v2的错误判断
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容检查:错误信息包含"Duplicate entry"
	return strings.Contains(err.Error(), "Duplicate entry")
}

// IsSerializationError 判断是否为MySQL并发写冲突错误
// MySQL错误码:
// - 1213: Deadlock found when trying to get lock
// - 1205: Lock wait timeout exceeded
// 用途:借阅事务遇到这两类错误时可以安全重试
// (事务已回滚,重试会重新加锁、重新检查业务条件)
func IsSerializationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Error 1213") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "Error 1205")
}
