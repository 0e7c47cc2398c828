package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBookUseCase *appbook.CreateBookUseCase
	updateBookUseCase *appbook.UpdateBookUseCase
	deleteBookUseCase *appbook.DeleteBookUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
	getBookUseCase    *appbook.GetBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase: createBookUseCase,
		updateBookUseCase: updateBookUseCase,
		deleteBookUseCase: deleteBookUseCase,
		listBooksUseCase:  listBooksUseCase,
		getBookUseCase:    getBookUseCase,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按关键词、状态过滤，分页返回
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        keyword query string false "标题/作者/编号关键词"
// @Param        status  query string false "状态过滤" Enums(available, borrowed)
// @Param        page    query int    false "页码" default(1)
// @Param        size    query int    false "每页数量" default(20)
// @Success      200 {object} response.Response
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var query dto.ListBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Keyword: query.Keyword,
		Status:  query.Status,
		Page:    query.Page,
		Size:    query.Size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Books, result.Total, result.Page, result.Size)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateBook 新增图书（管理员）
// @Summary      新增图书
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response "创建成功"
// @Failure      400 {object} response.Response "图书编号已存在"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createBookUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		BookNo:    req.BookNo,
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBook 更新图书（管理员）
// @Summary      更新图书
// @Description  更新馆藏编号与著录信息，空字段不更新
// @Tags         图书管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), bookID, appbook.UpdateBookRequest{
		BookNo:    req.BookNo,
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Publisher: req.Publisher,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBook 删除图书（管理员）
// @Summary      删除图书
// @Description  借阅中的图书禁止删除
// @Tags         图书管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      400 {object} response.Response "图书借阅中"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteBookUseCase.Execute(c.Request.Context(), bookID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
