package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const testSecret = "test-secret-key-for-unit-tests"

// TestGenerateAndParseToken 测试Token生成与解析的往返
func TestGenerateAndParseToken(t *testing.T) {
	m := NewManager(testSecret, 2*time.Hour, 7*24*time.Hour)

	pair, err := m.GenerateToken(42, "zhangsan", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(7200), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "library", claims.Issuer)
}

// TestParseToken_Expired 测试过期Token返回ErrTokenExpired
func TestParseToken_Expired(t *testing.T) {
	// Access Token有效期为负数，生成即过期
	m := NewManager(testSecret, -time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateToken(1, "user1", "user")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTokenExpired))
}

// TestParseToken_WrongSecret 测试签名密钥不匹配返回ErrInvalidToken
func TestParseToken_WrongSecret(t *testing.T) {
	m1 := NewManager(testSecret, time.Hour, time.Hour)
	m2 := NewManager("another-secret", time.Hour, time.Hour)

	pair, err := m1.GenerateToken(1, "user1", "user")
	require.NoError(t, err)

	_, err = m2.ParseToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidToken))
}

// TestParseToken_Garbage 测试非法字符串
func TestParseToken_Garbage(t *testing.T) {
	m := NewManager(testSecret, time.Hour, time.Hour)

	_, err := m.ParseToken("not-a-jwt-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidToken))
}

// TestRefreshAccessToken 测试用Refresh Token换发新的Access Token
func TestRefreshAccessToken(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 7*24*time.Hour)

	pair, err := m.GenerateToken(7, "lisi", "user")
	require.NoError(t, err)

	newAccess, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ParseToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "lisi", claims.Username, "刷新后用户名应保留")
	assert.Equal(t, "user", claims.Role, "刷新后角色应保留")
}

// TestRefreshAccessToken_AdminKeepsRole 管理员刷新Token后不能丢失角色
// 角色门禁只看Claims不查库，刷新链路丢角色等于管理员被降权
func TestRefreshAccessToken_AdminKeepsRole(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 7*24*time.Hour)

	pair, err := m.GenerateToken(1, "admin", "admin")
	require.NoError(t, err)

	newAccess, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ParseToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role, "管理员刷新后角色必须保留")
	assert.Equal(t, "admin", claims.Username)
}
