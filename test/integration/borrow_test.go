package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：借还流程集成测试
//
// 测试场景覆盖：
// 1. 借书 → 图书状态变更 → 还书的完整闭环
// 2. 一书多借被拒绝
// 3. 借阅配额限制
// 4. 非借阅人不能还书，管理员可以代办归还
// 5. 借阅记录查询（读者看自己的，管理员看全部）

// TestBorrowReturnFlow 测试完整借还闭环
func TestBorrowReturnFlow(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	_, readerToken := CreateTestUser(t, adminToken, "reader")
	bookID := CreateTestBook(t, adminToken, "《活着》")

	t.Run("借书成功", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, readerToken)
		require.Equal(t, 0, resp.Code, "借书应该成功: %s", resp.Message)

		var data BorrowData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析借书响应失败")
		assert.NotZero(t, data.RecordID, "应返回记录ID")
		assert.Equal(t, bookID, data.BookID)

		t.Logf("✓ 借书成功，记录ID: %d", data.RecordID)
	})

	t.Run("借出后图书状态为borrowed", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), readerToken)
		require.Equal(t, 0, resp.Code, "查询图书失败: %s", resp.Message)

		var data BookData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, "borrowed", data.Status, "借出后状态应为borrowed")
	})

	t.Run("同一本书不能再次借出", func(t *testing.T) {
		_, otherToken := CreateTestUser(t, adminToken, "other")
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, otherToken)
		assert.NotEqual(t, 0, resp.Code, "已借出的书不应被再次借出")

		t.Logf("✓ 一书多借被拒绝: %s", resp.Message)
	})

	t.Run("在借记录出现在我的借阅里", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/borrow-records/my?open=true", readerToken)
		require.Equal(t, 0, resp.Code, "查询借阅记录失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)

		var items []RecordItem
		err = json.Unmarshal(page.List, &items)
		require.NoError(t, err)
		require.NotEmpty(t, items, "应至少有一条在借记录")
		assert.Equal(t, bookID, items[0].BookID)
		assert.Empty(t, items[0].ReturnTime, "在借记录不应有归还时间")
	})

	t.Run("还书成功", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, readerToken)
		require.Equal(t, 0, resp.Code, "还书应该成功: %s", resp.Message)

		var data BorrowData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.NotEmpty(t, data.ReturnTime, "应返回归还时间")

		t.Logf("✓ 还书成功，记录ID: %d", data.RecordID)
	})

	t.Run("归还后图书恢复在架", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), readerToken)
		require.Equal(t, 0, resp.Code)

		var data BookData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, "available", data.Status, "归还后状态应为available")
	})

	t.Run("重复还书应失败", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, readerToken)
		assert.NotEqual(t, 0, resp.Code, "重复归还应该被拒绝")

		t.Logf("✓ 重复归还被拒绝: %s", resp.Message)
	})
}

// TestBorrowQuota 测试借阅配额（默认配置borrow.max_active=1）
func TestBorrowQuota(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	_, readerToken := CreateTestUser(t, adminToken, "quota")
	book1 := CreateTestBook(t, adminToken, "《围城》")
	book2 := CreateTestBook(t, adminToken, "《边城》")

	resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, book1), nil, readerToken)
	require.Equal(t, 0, resp.Code, "第一本借书应该成功: %s", resp.Message)

	resp = PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, book2), nil, readerToken)
	assert.NotEqual(t, 0, resp.Code, "超出配额应该被拒绝")
	t.Logf("✓ 配额限制生效: %s", resp.Message)

	// 清理：归还第一本
	resp = PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, book1), nil, readerToken)
	require.Equal(t, 0, resp.Code, "清理归还失败: %s", resp.Message)
}

// TestReturnByWrongUser 测试非借阅人还书
func TestReturnByWrongUser(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	_, borrowerToken := CreateTestUser(t, adminToken, "borrower")
	_, strangerToken := CreateTestUser(t, adminToken, "stranger")
	bookID := CreateTestBook(t, adminToken, "《呐喊》")

	resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, borrowerToken)
	require.Equal(t, 0, resp.Code, "借书失败: %s", resp.Message)

	t.Run("非借阅人还书被拒绝", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, strangerToken)
		assert.NotEqual(t, 0, resp.Code, "非借阅人不应能还书")
		t.Logf("✓ 非借阅人被拒绝: %s", resp.Message)
	})

	t.Run("管理员可以代办归还", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, adminToken)
		require.Equal(t, 0, resp.Code, "管理员代办归还失败: %s", resp.Message)
		t.Logf("✓ 管理员代办归还成功")
	})
}

// TestBorrowRecordsVisibility 测试借阅记录的权限边界
func TestBorrowRecordsVisibility(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	_, readerToken := CreateTestUser(t, adminToken, "visib")
	bookID := CreateTestBook(t, adminToken, "《朝花夕拾》")

	resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, readerToken)
	require.Equal(t, 0, resp.Code, "借书失败: %s", resp.Message)

	t.Run("普通用户不能查看全部记录", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/borrow-records", readerToken)
		assert.NotEqual(t, 0, resp.Code, "普通用户不应能访问全部记录")
	})

	t.Run("管理员可以查看全部记录", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/borrow-records", adminToken)
		require.Equal(t, 0, resp.Code, "管理员查询全部记录失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)
		assert.NotZero(t, page.Total, "应至少有一条记录")
	})

	t.Run("图书借阅历史", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d/records", BaseURL, bookID), adminToken)
		require.Equal(t, 0, resp.Code, "查询图书借阅历史失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)

		var items []RecordItem
		err = json.Unmarshal(page.List, &items)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		assert.NotEmpty(t, items[0].Username, "管理员视角应看到借阅人")
	})

	// 清理
	resp = PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, readerToken)
	require.Equal(t, 0, resp.Code)
}

// TestUpdateNote 测试借阅备注
func TestUpdateNote(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	_, readerToken := CreateTestUser(t, adminToken, "note")
	bookID := CreateTestBook(t, adminToken, "《骆驼祥子》")

	borrowResp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, readerToken)
	require.Equal(t, 0, borrowResp.Code, "借书失败: %s", borrowResp.Message)

	var data BorrowData
	err := json.Unmarshal(borrowResp.Data, &data)
	require.NoError(t, err)

	noteReq := map[string]string{"note": "封面有磨损"}
	resp := PutJSON(t, fmt.Sprintf("%s/borrow-records/%d/note", BaseURL, data.RecordID), noteReq, readerToken)
	require.Equal(t, 0, resp.Code, "更新备注失败: %s", resp.Message)

	// 备注出现在记录里
	listResp := GetJSON(t, BaseURL+"/borrow-records/my", readerToken)
	require.Equal(t, 0, listResp.Code)

	var page PageData
	err = json.Unmarshal(listResp.Data, &page)
	require.NoError(t, err)

	var items []RecordItem
	err = json.Unmarshal(page.List, &items)
	require.NoError(t, err)

	found := false
	for _, item := range items {
		if item.ID == data.RecordID {
			assert.Equal(t, "封面有磨损", item.Note)
			found = true
		}
	}
	assert.True(t, found, "应能在我的借阅里找到该记录")

	// 清理
	resp = PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, readerToken)
	require.Equal(t, 0, resp.Code)
}
