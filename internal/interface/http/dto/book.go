package dto

// CreateBookRequest 新增图书请求（管理员）
type CreateBookRequest struct {
	BookNo    string `json:"book_no" binding:"required,max=50"`
	Title     string `json:"title" binding:"required,max=200"`
	Author    string `json:"author" binding:"required,max=100"`
	ISBN      string `json:"isbn" binding:"omitempty,max=20"`
	Publisher string `json:"publisher" binding:"omitempty,max=100"`
}

// UpdateBookRequest 更新图书请求（空字段不更新）
type UpdateBookRequest struct {
	BookNo    string `json:"book_no" binding:"omitempty,max=50"`
	Title     string `json:"title" binding:"omitempty,max=200"`
	Author    string `json:"author" binding:"omitempty,max=100"`
	ISBN      string `json:"isbn" binding:"omitempty,max=20"`
	Publisher string `json:"publisher" binding:"omitempty,max=100"`
}

// ListBooksQuery 图书列表查询参数
// 学习要点：form tag用于Query String绑定（c.ShouldBindQuery）
type ListBooksQuery struct {
	Keyword string `form:"keyword"`
	Status  string `form:"status" binding:"omitempty,oneof=available borrowed"`
	Page    int    `form:"page,default=1" binding:"omitempty,min=1"`
	Size    int    `form:"size,default=20" binding:"omitempty,min=1,max=100"`
}
