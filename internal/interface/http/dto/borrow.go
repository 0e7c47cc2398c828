package dto

// ListRecordsQuery 借阅记录查询参数
type ListRecordsQuery struct {
	UserID uint `form:"user_id"` // 仅管理员接口生效
	BookID uint `form:"book_id"`
	Open   bool `form:"open"` // true只查在借记录
	Page   int  `form:"page,default=1" binding:"omitempty,min=1"`
	Size   int  `form:"size,default=20" binding:"omitempty,min=1,max=100"`
}

// UpdateNoteRequest 更新借阅备注请求
type UpdateNoteRequest struct {
	Note string `json:"note" binding:"max=500"`
}
