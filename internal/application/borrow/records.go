package borrow

import (
	"context"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ListRecordsUseCase 借阅记录查询用例
// 权限规则:
// 1. 读者只能查自己的记录(UserID强制为本人)
// 2. 管理员可以查任意用户、任意图书、全部记录
type ListRecordsUseCase struct {
	borrowRepo borrow.Repository
}

// NewListRecordsUseCase 创建用例
func NewListRecordsUseCase(borrowRepo borrow.Repository) *ListRecordsUseCase {
	return &ListRecordsUseCase{borrowRepo: borrowRepo}
}

// ListRecordsRequest 记录查询请求
type ListRecordsRequest struct {
	UserID uint // 0表示不过滤(仅管理员)
	BookID uint // 0表示不过滤
	Open   bool // true只查在借记录
	Page   int
	Size   int
}

// ListRecordsResponse 记录查询响应
type ListRecordsResponse struct {
	Records []*RecordInfo `json:"records"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	Size    int           `json:"size"`
}

// RecordInfo 借阅记录信息
type RecordInfo struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	BookNo     string `json:"book_no,omitempty"`
	BookTitle  string `json:"book_title,omitempty"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username,omitempty"`
	BorrowTime string `json:"borrow_time"`
	ReturnTime string `json:"return_time,omitempty"` // 空表示在借
	Note       string `json:"note,omitempty"`
}

// Execute 执行记录查询
func (uc *ListRecordsUseCase) Execute(ctx context.Context, req ListRecordsRequest) (*ListRecordsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Size < 1 || req.Size > 100 {
		req.Size = 20
	}

	records, total, err := uc.borrowRepo.List(ctx, borrow.ListQuery{
		UserID: req.UserID,
		BookID: req.BookID,
		Open:   req.Open,
		Page:   req.Page,
		Size:   req.Size,
	})
	if err != nil {
		return nil, err
	}

	infos := make([]*RecordInfo, len(records))
	for i, rec := range records {
		infos[i] = toRecordInfo(rec)
	}

	return &ListRecordsResponse{
		Records: infos,
		Total:   total,
		Page:    req.Page,
		Size:    req.Size,
	}, nil
}

// UpdateNoteUseCase 更新借阅备注用例
// 权限规则:只有记录的借阅人本人可以改备注
type UpdateNoteUseCase struct {
	borrowRepo borrow.Repository
}

// NewUpdateNoteUseCase 创建用例
func NewUpdateNoteUseCase(borrowRepo borrow.Repository) *UpdateNoteUseCase {
	return &UpdateNoteUseCase{borrowRepo: borrowRepo}
}

// Execute 执行备注更新
func (uc *UpdateNoteUseCase) Execute(ctx context.Context, recordID, userID uint, note string) (*RecordInfo, error) {
	rec, err := uc.borrowRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	// 归属校验是权限问题,返回无权限(403)
	// 与还书路径的"非借阅人"业务冲突(400)区分开
	if rec.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	rec.UpdateNote(note)
	if err := uc.borrowRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	return toRecordInfo(rec), nil
}

// toRecordInfo 领域实体 → 应用层DTO
func toRecordInfo(rec *borrow.BorrowRecord) *RecordInfo {
	info := &RecordInfo{
		ID:         rec.ID,
		BookID:     rec.BookID,
		UserID:     rec.UserID,
		BorrowTime: rec.BorrowTime.Format("2006-01-02 15:04:05"),
		Note:       rec.Note,
	}
	if rec.ReturnTime != nil {
		info.ReturnTime = rec.ReturnTime.Format("2006-01-02 15:04:05")
	}
	if rec.Book != nil {
		info.BookNo = rec.Book.BookNo
		info.BookTitle = rec.Book.Title
	}
	if rec.User != nil {
		info.Username = rec.User.Username
	}
	return info
}
