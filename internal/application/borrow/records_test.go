package borrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// =========================================
// 借阅备注与记录查询测试
// =========================================

// TestUpdateNote 测试借阅人更新备注
func TestUpdateNote(t *testing.T) {
	s := newStore()
	u := s.addUser("zhangsan")
	b := s.addBook("B001", "活着")
	borrowUC := newBorrowUseCase(s, &fakeTxManager{}, 1)
	noteUC := NewUpdateNoteUseCase(&fakeBorrowRepo{s})
	ctx := context.Background()

	resp, err := borrowUC.Execute(ctx, u.ID, b.ID)
	require.NoError(t, err)

	info, err := noteUC.Execute(ctx, resp.RecordID, u.ID, "封面有磨损")
	require.NoError(t, err)
	assert.Equal(t, "封面有磨损", info.Note)

	// 备注落库
	assert.Equal(t, "封面有磨损", s.records[resp.RecordID].Note)
}

// TestUpdateNote_NotOwner 非借阅人改备注是权限问题,返回无权限
func TestUpdateNote_NotOwner(t *testing.T) {
	s := newStore()
	owner := s.addUser("zhangsan")
	other := s.addUser("lisi")
	b := s.addBook("B001", "活着")
	borrowUC := newBorrowUseCase(s, &fakeTxManager{}, 1)
	noteUC := NewUpdateNoteUseCase(&fakeBorrowRepo{s})
	ctx := context.Background()

	resp, err := borrowUC.Execute(ctx, owner.ID, b.ID)
	require.NoError(t, err)

	_, err = noteUC.Execute(ctx, resp.RecordID, other.ID, "乱写")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeForbidden), "期望无权限错误, 实际: %v", err)

	// 备注未被写入
	assert.Empty(t, s.records[resp.RecordID].Note)
}

// TestUpdateNote_RecordNotFound 记录不存在
func TestUpdateNote_RecordNotFound(t *testing.T) {
	s := newStore()
	u := s.addUser("zhangsan")
	noteUC := NewUpdateNoteUseCase(&fakeBorrowRepo{s})

	_, err := noteUC.Execute(context.Background(), 999, u.ID, "备注")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRecordNotFound), "期望记录不存在错误, 实际: %v", err)
}

// TestListRecords_OpenFilter 测试在借过滤
func TestListRecords_OpenFilter(t *testing.T) {
	s := newStore()
	u := s.addUser("zhangsan")
	b1 := s.addBook("B001", "活着")
	b2 := s.addBook("B002", "围城")
	borrowUC := newBorrowUseCase(s, &fakeTxManager{}, 2)
	returnUC := newReturnUseCase(s, &fakeTxManager{})
	listUC := NewListRecordsUseCase(&fakeBorrowRepo{s})
	ctx := context.Background()

	_, err := borrowUC.Execute(ctx, u.ID, b1.ID)
	require.NoError(t, err)
	_, err = borrowUC.Execute(ctx, u.ID, b2.ID)
	require.NoError(t, err)
	_, err = returnUC.Execute(ctx, u.ID, b1.ID, false)
	require.NoError(t, err)

	// 全部记录
	all, err := listUC.Execute(ctx, ListRecordsRequest{UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	// 只看在借
	open, err := listUC.Execute(ctx, ListRecordsRequest{UserID: u.ID, Open: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), open.Total)
	assert.Equal(t, b2.ID, open.Records[0].BookID)
	assert.Empty(t, open.Records[0].ReturnTime)
}
