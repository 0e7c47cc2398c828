package handler

import (
	"github.com/gin-gonic/gin"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// BorrowHandler 借阅HTTP处理器
type BorrowHandler struct {
	borrowBookUseCase  *appborrow.BorrowBookUseCase
	returnBookUseCase  *appborrow.ReturnBookUseCase
	listRecordsUseCase *appborrow.ListRecordsUseCase
	updateNoteUseCase  *appborrow.UpdateNoteUseCase
}

// NewBorrowHandler 创建借阅处理器
func NewBorrowHandler(
	borrowBookUseCase *appborrow.BorrowBookUseCase,
	returnBookUseCase *appborrow.ReturnBookUseCase,
	listRecordsUseCase *appborrow.ListRecordsUseCase,
	updateNoteUseCase *appborrow.UpdateNoteUseCase,
) *BorrowHandler {
	return &BorrowHandler{
		borrowBookUseCase:  borrowBookUseCase,
		returnBookUseCase:  returnBookUseCase,
		listRecordsUseCase: listRecordsUseCase,
		updateNoteUseCase:  updateNoteUseCase,
	}
}

// BorrowBook 借书
// @Summary      借书
// @Description  借出指定图书，超出配额或图书已借出时失败
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "借阅成功"
// @Failure      400 {object} response.Response "图书已被借出/超出借阅上限"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "系统繁忙，请稍后重试"
// @Router       /api/v1/books/{id}/borrow [post]
func (h *BorrowHandler) BorrowBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.borrowBookUseCase.Execute(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ReturnBook 还书
// @Summary      还书
// @Description  归还指定图书，只有借阅人本人或管理员可以归还
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "归还成功"
// @Failure      400 {object} response.Response "未借阅此图书"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/return [post]
func (h *BorrowHandler) ReturnBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.returnBookUseCase.Execute(
		c.Request.Context(),
		middleware.GetUserID(c),
		bookID,
		middleware.IsAdmin(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MyRecords 我的借阅记录
// @Summary      我的借阅记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        open query bool false "只查在借记录"
// @Param        page query int  false "页码" default(1)
// @Param        size query int  false "每页数量" default(20)
// @Success      200 {object} response.Response
// @Router       /api/v1/borrow-records/my [get]
func (h *BorrowHandler) MyRecords(c *gin.Context) {
	var query dto.ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// 读者只能查自己的记录，UserID强制为本人
	result, err := h.listRecordsUseCase.Execute(c.Request.Context(), appborrow.ListRecordsRequest{
		UserID: middleware.GetUserID(c),
		BookID: query.BookID,
		Open:   query.Open,
		Page:   query.Page,
		Size:   query.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Records, result.Total, result.Page, result.Size)
}

// AllRecords 全部借阅记录（管理员）
// @Summary      全部借阅记录
// @Description  管理员查询借阅台账，支持按用户、图书过滤
// @Tags         借阅管理
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query int  false "按借阅人过滤"
// @Param        book_id query int  false "按图书过滤"
// @Param        open    query bool false "只查在借记录"
// @Param        page    query int  false "页码" default(1)
// @Param        size    query int  false "每页数量" default(20)
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/borrow-records [get]
func (h *BorrowHandler) AllRecords(c *gin.Context) {
	var query dto.ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listRecordsUseCase.Execute(c.Request.Context(), appborrow.ListRecordsRequest{
		UserID: query.UserID,
		BookID: query.BookID,
		Open:   query.Open,
		Page:   query.Page,
		Size:   query.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Records, result.Total, result.Page, result.Size)
}

// BookRecords 某图书的借阅记录
// @Summary      图书借阅记录
// @Description  查询指定图书的流转历史
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "图书ID"
// @Param        page query int  false "页码" default(1)
// @Param        size query int  false "每页数量" default(20)
// @Success      200 {object} response.Response
// @Router       /api/v1/books/{id}/records [get]
func (h *BorrowHandler) BookRecords(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var query dto.ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	req := appborrow.ListRecordsRequest{
		BookID: bookID,
		Page:   query.Page,
		Size:   query.Size,
	}
	// 读者只能看自己在这本书上的记录，管理员看全部
	if !middleware.IsAdmin(c) {
		req.UserID = middleware.GetUserID(c)
	}

	result, err := h.listRecordsUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Records, result.Total, result.Page, result.Size)
}

// UpdateNote 更新借阅备注
// @Summary      更新借阅备注
// @Description  只有记录的借阅人本人可以修改
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "记录ID"
// @Param        request body dto.UpdateNoteRequest true "备注内容"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "非本人记录"
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/v1/borrow-records/{id}/note [put]
func (h *BorrowHandler) UpdateNote(c *gin.Context) {
	recordID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateNoteUseCase.Execute(c.Request.Context(), recordID, middleware.GetUserID(c), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
