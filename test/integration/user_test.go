package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：用户与认证集成测试
//
// 测试场景覆盖：
// 1. 管理员登录（初始管理员由服务启动时自动创建）
// 2. 管理员开通账号、角色管理
// 3. 登录/登出/令牌刷新
// 4. 修改密码后旧令牌失效（黑名单）
// 5. 权限边界（普通用户不能访问管理接口）

// TestAdminLogin 测试初始管理员登录
func TestAdminLogin(t *testing.T) {
	RequireServer(t)

	t.Run("正确密码登录成功", func(t *testing.T) {
		token := LoginAdmin(t)
		assert.NotEmpty(t, token, "应返回访问令牌")
		t.Logf("✓ 管理员登录成功")
	})

	t.Run("错误密码登录失败", func(t *testing.T) {
		loginReq := map[string]string{
			"username": AdminUsername,
			"password": "wrong_password_1",
		}
		resp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "错误密码应该登录失败")
		t.Logf("✓ 错误密码被拒绝: %s", resp.Message)
	})

	t.Run("不存在的用户登录失败", func(t *testing.T) {
		loginReq := map[string]string{
			"username": "no_such_user_xyz",
			"password": "whatever123",
		}
		resp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
		assert.NotEqual(t, 0, resp.Code, "不存在的用户应该登录失败")
	})
}

// TestCreateUser 测试管理员开通账号
func TestCreateUser(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)

	t.Run("正常开通账号", func(t *testing.T) {
		username := GenerateTestUsername("newuser")
		createReq := map[string]string{
			"username": username,
			"password": "Reader1234",
		}

		resp := PostJSON(t, BaseURL+"/users", createReq, adminToken)
		require.Equal(t, 0, resp.Code, "开通账号失败: %s", resp.Message)

		var data UserData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.NotZero(t, data.ID)
		assert.Equal(t, username, data.Username)
		assert.Equal(t, "user", data.Role, "未指定角色时应默认为user")

		t.Logf("✓ 开通账号成功，用户ID: %d", data.ID)
	})

	t.Run("用户名重复应失败", func(t *testing.T) {
		username := GenerateTestUsername("dup")
		createReq := map[string]string{
			"username": username,
			"password": "Reader1234",
		}

		resp := PostJSON(t, BaseURL+"/users", createReq, adminToken)
		require.Equal(t, 0, resp.Code, "第一次开通失败: %s", resp.Message)

		resp = PostJSON(t, BaseURL+"/users", createReq, adminToken)
		assert.NotEqual(t, 0, resp.Code, "重复用户名应该失败")
		t.Logf("✓ 重复用户名被拒绝: %s", resp.Message)
	})

	t.Run("弱密码应失败", func(t *testing.T) {
		createReq := map[string]string{
			"username": GenerateTestUsername("weak"),
			"password": "12345678", // 纯数字
		}

		resp := PostJSON(t, BaseURL+"/users", createReq, adminToken)
		assert.NotEqual(t, 0, resp.Code, "纯数字密码应该被拒绝")
	})

	t.Run("普通用户不能开通账号", func(t *testing.T) {
		_, readerToken := CreateTestUser(t, adminToken, "plain")
		createReq := map[string]string{
			"username": GenerateTestUsername("x"),
			"password": "Reader1234",
		}

		resp := PostJSON(t, BaseURL+"/users", createReq, readerToken)
		assert.NotEqual(t, 0, resp.Code, "普通用户不应能开通账号")
		t.Logf("✓ 普通用户被拒绝: %s", resp.Message)
	})
}

// TestTokenLifecycle 测试令牌的刷新与登出
func TestTokenLifecycle(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	username, _ := CreateTestUser(t, adminToken, "lifecycle")

	loginReq := map[string]string{
		"username": username,
		"password": "Reader1234",
	}
	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err)

	t.Run("刷新令牌换取新访问令牌", func(t *testing.T) {
		refreshReq := map[string]string{"refresh_token": loginData.RefreshToken}
		resp := PostJSON(t, BaseURL+"/auth/refresh", refreshReq, "")
		require.Equal(t, 0, resp.Code, "刷新令牌失败: %s", resp.Message)

		var data map[string]string
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.NotEmpty(t, data["access_token"], "应返回新的访问令牌")
	})

	t.Run("登出后令牌进入黑名单", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/auth/logout", nil, loginData.AccessToken)
		require.Equal(t, 0, resp.Code, "登出失败: %s", resp.Message)

		// 被拉黑的令牌不能再访问受保护接口
		resp = GetJSON(t, BaseURL+"/users/me", loginData.AccessToken)
		assert.NotEqual(t, 0, resp.Code, "登出后的令牌不应再可用")
		t.Logf("✓ 登出后令牌被拒绝: %s", resp.Message)
	})
}

// TestChangePassword 测试修改密码
func TestChangePassword(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	username, token := CreateTestUser(t, adminToken, "chpwd")

	t.Run("旧密码错误应失败", func(t *testing.T) {
		req := map[string]string{
			"old_password": "WrongOld123",
			"new_password": "NewPass1234",
		}
		resp := PutJSON(t, BaseURL+"/users/me/password", req, token)
		assert.NotEqual(t, 0, resp.Code, "旧密码错误应该失败")
	})

	t.Run("修改成功后新密码可登录", func(t *testing.T) {
		req := map[string]string{
			"old_password": "Reader1234",
			"new_password": "NewPass1234",
		}
		resp := PutJSON(t, BaseURL+"/users/me/password", req, token)
		require.Equal(t, 0, resp.Code, "修改密码失败: %s", resp.Message)

		loginReq := map[string]string{
			"username": username,
			"password": "NewPass1234",
		}
		loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
		assert.Equal(t, 0, loginResp.Code, "新密码应该能登录: %s", loginResp.Message)

		// 旧密码不再可用
		loginReq["password"] = "Reader1234"
		loginResp = PostJSON(t, BaseURL+"/auth/login", loginReq, "")
		assert.NotEqual(t, 0, loginResp.Code, "旧密码不应再可用")
	})
}

// TestUpdateRole 测试角色调整
func TestUpdateRole(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	username, _ := CreateTestUser(t, adminToken, "promote")

	// 找到该用户的ID
	listResp := GetJSON(t, BaseURL+"/users", adminToken)
	require.Equal(t, 0, listResp.Code, "查询用户列表失败: %s", listResp.Message)

	var users []UserData
	err := json.Unmarshal(listResp.Data, &users)
	require.NoError(t, err)

	var userID uint
	for _, u := range users {
		if u.Username == username {
			userID = u.ID
		}
	}
	require.NotZero(t, userID, "用户列表里应能找到新开通的用户")

	// 提升为管理员
	roleReq := map[string]string{"role": "admin"}
	resp := PutJSON(t, fmt.Sprintf("%s/users/%d/role", BaseURL, userID), roleReq, adminToken)
	require.Equal(t, 0, resp.Code, "调整角色失败: %s", resp.Message)

	// 新角色登录后可以访问管理接口
	loginReq := map[string]string{
		"username": username,
		"password": "Reader1234",
	}
	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code)

	var loginData LoginData
	err = json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err)

	usersResp := GetJSON(t, BaseURL+"/users", loginData.AccessToken)
	assert.Equal(t, 0, usersResp.Code, "提升为管理员后应能访问用户列表: %s", usersResp.Message)
	t.Logf("✓ 角色提升生效")
}
