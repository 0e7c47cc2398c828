package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
// 3. 使用依赖注入，便于测试
type UserHandler struct {
	loginUseCase          *appuser.LoginUseCase
	logoutUseCase         *appuser.LogoutUseCase
	createUserUseCase     *appuser.CreateUserUseCase
	getProfileUseCase     *appuser.GetProfileUseCase
	changePasswordUseCase *appuser.ChangePasswordUseCase
	updateRoleUseCase     *appuser.UpdateRoleUseCase
	listUsersUseCase      *appuser.ListUsersUseCase
	jwtManager            *jwt.Manager
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	createUserUseCase *appuser.CreateUserUseCase,
	getProfileUseCase *appuser.GetProfileUseCase,
	changePasswordUseCase *appuser.ChangePasswordUseCase,
	updateRoleUseCase *appuser.UpdateRoleUseCase,
	listUsersUseCase *appuser.ListUsersUseCase,
	jwtManager *jwt.Manager,
) *UserHandler {
	return &UserHandler{
		loginUseCase:          loginUseCase,
		logoutUseCase:         logoutUseCase,
		createUserUseCase:     createUserUseCase,
		getProfileUseCase:     getProfileUseCase,
		changePasswordUseCase: changePasswordUseCase,
		updateRoleUseCase:     updateRoleUseCase,
		listUsersUseCase:      listUsersUseCase,
		jwtManager:            jwtManager,
	}
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证用户名密码，返回JWT Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	// 1. 绑定并验证参数
	// 学习要点：Gin的ShouldBindJSON会自动校验binding tag
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// 2. 调用登录用例
	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		// 登录失败（用户不存在或密码错误）
		response.Error(c, err)
		return
	}

	// 3. 返回成功响应（包含Token）
	response.Success(c, &dto.LoginResponse{
		User: dto.UserResponse{
			ID:       result.User.ID,
			Username: result.User.Username,
			Role:     result.User.Role,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将Token加入黑名单
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	token := middleware.GetAccessToken(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// RefreshToken 刷新Access Token
// @Summary      刷新Token
// @Description  使用Refresh Token换取新的Access Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response "刷新成功"
// @Failure      401 {object} response.Response "Refresh Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	accessToken, err := h.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"access_token": accessToken})
}

// GetProfile 查询当前用户信息
// @Summary      当前用户信息
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Router       /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	result, err := h.getProfileUseCase.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangePassword 修改密码
// @Summary      修改密码
// @Description  校验原密码后更新，成功后当前Token失效
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ChangePasswordRequest true "密码信息"
// @Success      200 {object} response.Response "修改成功"
// @Failure      401 {object} response.Response "原密码错误"
// @Router       /api/v1/users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	err := h.changePasswordUseCase.Execute(
		c.Request.Context(),
		middleware.GetUserID(c),
		req.OldPassword,
		req.NewPassword,
		middleware.GetAccessToken(c),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// CreateUser 创建用户（管理员）
// @Summary      创建用户
// @Description  管理员开通读者或管理员账号
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateUserRequest true "用户信息"
// @Success      200 {object} response.Response{data=dto.UserResponse} "创建成功"
// @Failure      400 {object} response.Response "用户名已存在"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createUserUseCase.Execute(c.Request.Context(), appuser.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListUsers 用户列表（管理员）
// @Summary      用户列表
// @Tags         用户管理
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	result, err := h.listUsersUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateRole 变更用户角色（管理员）
// @Summary      变更角色
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "用户ID"
// @Param        request body dto.UpdateRoleRequest true "角色信息"
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateRoleUseCase.Execute(c.Request.Context(), userID, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseIDParam 解析路径参数:id
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的ID")
	}
	return uint(id), nil
}
