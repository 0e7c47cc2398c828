package borrow

import (
	"testing"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// TestBorrowRecordLifecycle 测试借阅记录生命周期
func TestBorrowRecordLifecycle(t *testing.T) {
	rec := NewBorrowRecord(1, 2)

	if !rec.IsOpen() {
		t.Error("新记录应该是在借状态")
	}
	if rec.BorrowTime.IsZero() {
		t.Error("借出时间应该自动填充")
	}

	// 归还
	if err := rec.Close(); err != nil {
		t.Fatalf("关闭记录失败: %v", err)
	}
	if rec.IsOpen() {
		t.Error("关闭后不应该是在借状态")
	}
	if rec.ReturnTime == nil {
		t.Error("归还时间应该填充")
	}

	// 重复归还
	if err := rec.Close(); !apperrors.IsCode(err, apperrors.ErrCodeBusinessError) {
		t.Errorf("期望记录已归还错误, 实际: %v", err)
	}
}

// TestUpdateNote 测试备注更新
func TestUpdateNote(t *testing.T) {
	rec := NewBorrowRecord(1, 2)

	rec.UpdateNote("第三章有批注")
	if rec.Note != "第三章有批注" {
		t.Errorf("备注未更新: %s", rec.Note)
	}

	// 归还后仍可改备注（记录保留，备注属于记录而非借阅状态）
	if err := rec.Close(); err != nil {
		t.Fatalf("关闭记录失败: %v", err)
	}
	rec.UpdateNote("已还")
	if rec.Note != "已还" {
		t.Errorf("备注未更新: %s", rec.Note)
	}
}
