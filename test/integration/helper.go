package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 集成测试依赖运行中的服务（go run ./cmd/api），
// 这里封装HTTP请求、管理员登录、测试数据准备等通用步骤，
// 让每个测试文件只关注业务场景本身

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 服务健康检查地址
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// 初始管理员账号，与config/config.yaml的admin配置保持一致
	AdminUsername = "admin"
	AdminPassword = "admin123456"
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserData 用户响应数据
type UserData struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// BookData 图书响应数据
type BookData struct {
	ID        uint   `json:"id"`
	BookNo    string `json:"book_no"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Publisher string `json:"publisher"`
	Status    string `json:"status"`
}

// BorrowData 借书/还书响应数据
type BorrowData struct {
	RecordID   uint   `json:"record_id"`
	BookID     uint   `json:"book_id"`
	BookTitle  string `json:"book_title"`
	BorrowTime string `json:"borrow_time"`
	ReturnTime string `json:"return_time"`
}

// PageData 分页响应数据
type PageData struct {
	List       json.RawMessage `json:"list"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// RecordItem 借阅记录列表项
type RecordItem struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	BookNo     string `json:"book_no"`
	BookTitle  string `json:"book_title"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	BorrowTime string `json:"borrow_time"`
	ReturnTime string `json:"return_time"`
	Note       string `json:"note"`
}

// RequireServer 检查服务是否在运行，不在运行则跳过测试
// 避免集成测试在没有起服务的环境里（如单元测试流水线）直接报错
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("服务未运行，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// doJSON 发送带JSON body的请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(respBody, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(respBody))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PUT", url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// GenerateTestUsername 生成唯一的测试用户名
// 使用纳秒时间戳避免测试重复运行时用户名冲突
func GenerateTestUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano()%100000000)
}

// GenerateTestBookNo 生成唯一的测试馆藏编号
func GenerateTestBookNo() string {
	return fmt.Sprintf("T%012d", time.Now().UnixNano()%1000000000000)
}

// LoginAdmin 用初始管理员账号登录，返回访问令牌
func LoginAdmin(t *testing.T) string {
	t.Helper()
	loginReq := map[string]string{
		"username": AdminUsername,
		"password": AdminPassword,
	}

	resp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, resp.Code, "管理员登录失败: %s", resp.Message)

	var data LoginData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析登录响应失败")

	return data.AccessToken
}

// CreateTestUser 管理员开通普通用户并登录，返回用户名和访问令牌
// 这是一个"高阶"辅助函数，封装了开户+登录的完整流程
func CreateTestUser(t *testing.T, adminToken, prefix string) (username string, token string) {
	t.Helper()
	username = GenerateTestUsername(prefix)
	createReq := map[string]string{
		"username": username,
		"password": "Reader1234",
		"role":     "user",
	}

	createResp := PostJSON(t, BaseURL+"/users", createReq, adminToken)
	require.Equal(t, 0, createResp.Code, "开通用户失败: %s", createResp.Message)

	loginReq := map[string]string{
		"username": username,
		"password": "Reader1234",
	}
	loginResp := PostJSON(t, BaseURL+"/auth/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "用户登录失败: %s", loginResp.Message)

	var data LoginData
	err := json.Unmarshal(loginResp.Data, &data)
	require.NoError(t, err, "解析登录响应失败")

	return username, data.AccessToken
}

// CreateTestBook 管理员录入测试图书，返回图书ID
func CreateTestBook(t *testing.T, adminToken, title string) uint {
	t.Helper()
	bookReq := map[string]interface{}{
		"book_no":   GenerateTestBookNo(),
		"title":     title,
		"author":    "测试作者",
		"isbn":      "9787115000000",
		"publisher": "测试出版社",
	}

	resp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
	require.Equal(t, 0, resp.Code, "图书录入失败: %s", resp.Message)

	var data BookData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析图书响应失败")

	return data.ID
}
