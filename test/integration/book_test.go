package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：图书管理集成测试
//
// 测试场景覆盖：
// 1. 图书录入（管理员）
// 2. 图书列表、关键词搜索、状态过滤、分页
// 3. 图书信息修改与下架
// 4. 权限边界（普通用户只读）

// TestBookCreate 测试图书录入
func TestBookCreate(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)

	t.Run("正常录入图书", func(t *testing.T) {
		bookNo := GenerateTestBookNo()
		bookReq := map[string]interface{}{
			"book_no":   bookNo,
			"title":     "《Go语言高级编程》",
			"author":    "柴树杉",
			"isbn":      "9787115545336",
			"publisher": "人民邮电出版社",
		}

		resp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
		require.Equal(t, 0, resp.Code, "录入应该成功: %s", resp.Message)

		var data BookData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.ID, "图书ID应该大于0")
		assert.Equal(t, bookNo, data.BookNo, "馆藏编号应该一致")
		assert.Equal(t, "available", data.Status, "新书默认在架")

		t.Logf("✓ 录入成功，图书ID: %d, 编号: %s", data.ID, data.BookNo)
	})

	t.Run("馆藏编号重复应失败", func(t *testing.T) {
		bookNo := GenerateTestBookNo()
		bookReq := map[string]interface{}{
			"book_no": bookNo,
			"title":   "《图书A》",
			"author":  "作者A",
		}

		resp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
		require.Equal(t, 0, resp.Code, "第一次录入失败: %s", resp.Message)

		bookReq["title"] = "《图书B》"
		resp = PostJSON(t, BaseURL+"/books", bookReq, adminToken)
		assert.NotEqual(t, 0, resp.Code, "重复编号应该失败")
		t.Logf("✓ 重复编号被拒绝: %s", resp.Message)
	})

	t.Run("缺少必填字段应失败", func(t *testing.T) {
		bookReq := map[string]interface{}{
			"book_no": GenerateTestBookNo(),
			// 缺少title和author
		}
		resp := PostJSON(t, BaseURL+"/books", bookReq, adminToken)
		assert.NotEqual(t, 0, resp.Code, "缺少必填字段应该失败")
	})

	t.Run("普通用户不能录入", func(t *testing.T) {
		_, readerToken := CreateTestUser(t, adminToken, "ro")
		bookReq := map[string]interface{}{
			"book_no": GenerateTestBookNo(),
			"title":   "《测试图书》",
			"author":  "测试作者",
		}

		resp := PostJSON(t, BaseURL+"/books", bookReq, readerToken)
		assert.NotEqual(t, 0, resp.Code, "普通用户不应能录入图书")
	})

	t.Run("未登录不能访问", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books", "")
		assert.NotEqual(t, 0, resp.Code, "未登录应该被拒绝")
		t.Logf("✓ 未登录正确被拒绝: %s", resp.Message)
	})
}

// TestBookList 测试图书列表与搜索
func TestBookList(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)

	// 用唯一标题保证搜索结果可断言
	marker := GenerateTestUsername("searchmark")
	CreateTestBook(t, adminToken, "《"+marker+"》")

	t.Run("关键词搜索", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?keyword="+marker, adminToken)
		require.Equal(t, 0, resp.Code, "搜索失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total, "唯一标记应该恰好命中一本")
	})

	t.Run("分页参数", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?page=1&size=5", adminToken)
		require.Equal(t, 0, resp.Code, "分页查询失败: %s", resp.Message)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 5, page.PageSize)
	})

	t.Run("状态过滤", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?status=available", adminToken)
		require.Equal(t, 0, resp.Code, "状态过滤失败: %s", resp.Message)
	})

	t.Run("非法状态应失败", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?status=lost", adminToken)
		assert.NotEqual(t, 0, resp.Code, "非法状态值应该报参数错误")
	})
}

// TestBookUpdateAndDelete 测试图书修改与下架
func TestBookUpdateAndDelete(t *testing.T) {
	RequireServer(t)
	adminToken := LoginAdmin(t)
	bookID := CreateTestBook(t, adminToken, "《待修改》")

	t.Run("修改图书信息", func(t *testing.T) {
		updateReq := map[string]interface{}{
			"title": "《已修改》",
		}
		resp := PutJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), updateReq, adminToken)
		require.Equal(t, 0, resp.Code, "修改失败: %s", resp.Message)

		getResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), adminToken)
		require.Equal(t, 0, getResp.Code)

		var data BookData
		err := json.Unmarshal(getResp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, "《已修改》", data.Title)
		assert.Equal(t, "测试作者", data.Author, "未提交的字段应保持原值")
	})

	t.Run("编号改成已存在的应失败", func(t *testing.T) {
		// 再录入一本，用它的编号制造冲突
		otherNo := GenerateTestBookNo()
		otherReq := map[string]interface{}{
			"book_no": otherNo,
			"title":   "《占位图书》",
			"author":  "测试作者",
		}
		resp := PostJSON(t, BaseURL+"/books", otherReq, adminToken)
		require.Equal(t, 0, resp.Code, "录入占位图书失败: %s", resp.Message)

		updateReq := map[string]interface{}{"book_no": otherNo}
		resp = PutJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), updateReq, adminToken)
		assert.NotEqual(t, 0, resp.Code, "编号冲突应该被拒绝")
		t.Logf("✓ 编号冲突被拒绝: %s", resp.Message)
	})

	t.Run("借出中的图书不能下架", func(t *testing.T) {
		_, readerToken := CreateTestUser(t, adminToken, "holder")
		resp := PostJSON(t, fmt.Sprintf("%s/books/%d/borrow", BaseURL, bookID), nil, readerToken)
		require.Equal(t, 0, resp.Code, "借书失败: %s", resp.Message)

		resp = DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), adminToken)
		assert.NotEqual(t, 0, resp.Code, "借出中的图书不应能下架")
		t.Logf("✓ 借出中下架被拒绝: %s", resp.Message)

		// 归还后可以下架
		resp = PostJSON(t, fmt.Sprintf("%s/books/%d/return", BaseURL, bookID), nil, readerToken)
		require.Equal(t, 0, resp.Code, "归还失败: %s", resp.Message)

		resp = DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), adminToken)
		require.Equal(t, 0, resp.Code, "归还后下架失败: %s", resp.Message)
	})

	t.Run("下架后查询返回不存在", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), adminToken)
		assert.NotEqual(t, 0, resp.Code, "下架后的图书不应能查到")
	})

	t.Run("下架后借阅历史仍可见", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/borrow-records", adminToken)
		require.Equal(t, 0, resp.Code)

		var page PageData
		err := json.Unmarshal(resp.Data, &page)
		require.NoError(t, err)

		var items []RecordItem
		err = json.Unmarshal(page.List, &items)
		require.NoError(t, err)

		found := false
		for _, item := range items {
			if item.BookID == bookID {
				found = true
				assert.NotEmpty(t, item.BookTitle, "下架图书的历史记录仍应带出书名")
			}
		}
		assert.True(t, found, "下架图书的借阅记录应该保留")
	})
}
