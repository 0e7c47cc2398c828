package book

import (
	"context"
	"sort"
	"testing"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// fakeRepository 内存版图书仓储（测试用）
type fakeRepository struct {
	books  map[uint]*Book
	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[uint]*Book), nextID: 1}
}

func (r *fakeRepository) Create(ctx context.Context, b *Book) error {
	for _, existing := range r.books {
		if existing.BookNo == b.BookNo {
			return ErrBookNoDuplicate
		}
	}
	b.ID = r.nextID
	r.nextID++
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepository) FindByID(ctx context.Context, id uint) (*Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepository) FindByBookNo(ctx context.Context, bookNo string) (*Book, error) {
	for _, b := range r.books {
		if b.BookNo == bookNo {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *fakeRepository) List(ctx context.Context, query ListQuery) ([]*Book, int64, error) {
	matched := make([]*Book, 0)
	for _, b := range r.books {
		if query.Status != "" && b.Status != query.Status {
			continue
		}
		cp := *b
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	start := (query.Page - 1) * query.Size
	if start > len(matched) {
		return nil, total, nil
	}
	end := start + query.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeRepository) Update(ctx context.Context, b *Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return ErrBookNotFound
	}
	// 模拟book_no的UNIQUE索引
	for id, existing := range r.books {
		if id != b.ID && existing.BookNo == b.BookNo {
			return ErrBookNoDuplicate
		}
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepository) Delete(ctx context.Context, id uint) error {
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeRepository) LockByID(ctx context.Context, id uint) (*Book, error) {
	return r.FindByID(ctx, id)
}

// TestCreateBook 测试新增图书
func TestCreateBook(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, "B001", "Go语言设计与实现", "左书祺", "9787115545381", "人民邮电出版社")
	if err != nil {
		t.Fatalf("新增图书失败: %v", err)
	}
	if b.ID == 0 {
		t.Error("应该回填自增ID")
	}
	if b.Status != StatusAvailable {
		t.Errorf("新书应该在架可借, 实际: %s", b.Status)
	}

	// 必填字段缺失
	if _, err := svc.CreateBook(ctx, "", "书名", "作者", "", ""); !apperrors.IsCode(err, apperrors.ErrCodeInvalidParams) {
		t.Errorf("期望参数错误, 实际: %v", err)
	}

	// 馆藏编号重复
	if _, err := svc.CreateBook(ctx, "B001", "另一本书", "另一作者", "", ""); !apperrors.IsCode(err, apperrors.ErrCodeBookNoDuplicate) {
		t.Errorf("期望编号重复错误, 实际: %v", err)
	}
}

// TestUpdateBook 测试更新著录信息（空字段不覆盖）
func TestUpdateBook(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, "B001", "旧书名", "旧作者", "", "")
	if err != nil {
		t.Fatalf("新增图书失败: %v", err)
	}

	updated, err := svc.UpdateBook(ctx, b.ID, "", "新书名", "", "9787111111111", "")
	if err != nil {
		t.Fatalf("更新图书失败: %v", err)
	}
	if updated.Title != "新书名" {
		t.Errorf("书名应该更新, 实际: %s", updated.Title)
	}
	if updated.Author != "旧作者" {
		t.Errorf("空字段不应该覆盖, 实际: %s", updated.Author)
	}
	if updated.ISBN != "9787111111111" {
		t.Errorf("ISBN应该更新, 实际: %s", updated.ISBN)
	}
	if updated.BookNo != "B001" {
		t.Errorf("未提交编号时不应变更, 实际: %s", updated.BookNo)
	}
}

// TestUpdateBook_BookNo 测试馆藏编号变更与查重
func TestUpdateBook_BookNo(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	b1, err := svc.CreateBook(ctx, "B001", "书一", "作者", "", "")
	if err != nil {
		t.Fatalf("新增图书失败: %v", err)
	}
	if _, err := svc.CreateBook(ctx, "B002", "书二", "作者", "", ""); err != nil {
		t.Fatalf("新增图书失败: %v", err)
	}

	// 换成空闲编号
	updated, err := svc.UpdateBook(ctx, b1.ID, "B003", "", "", "", "")
	if err != nil {
		t.Fatalf("变更编号失败: %v", err)
	}
	if updated.BookNo != "B003" {
		t.Errorf("编号应该更新为B003, 实际: %s", updated.BookNo)
	}

	// 与其他图书冲突
	if _, err := svc.UpdateBook(ctx, b1.ID, "B002", "", "", "", ""); !apperrors.IsCode(err, apperrors.ErrCodeBookNoDuplicate) {
		t.Errorf("期望编号重复错误, 实际: %v", err)
	}

	// 提交自己当前的编号不算冲突
	if _, err := svc.UpdateBook(ctx, b1.ID, "B003", "改名", "", "", ""); err != nil {
		t.Fatalf("提交原编号不应报错: %v", err)
	}
}

// TestDeleteBook 测试删除图书
func TestDeleteBook(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, "B001", "书名", "作者", "", "")
	if err != nil {
		t.Fatalf("新增图书失败: %v", err)
	}

	// 借阅中禁止删除
	locked, _ := repo.FindByID(ctx, b.ID)
	if err := locked.MarkBorrowed(); err != nil {
		t.Fatalf("标记借出失败: %v", err)
	}
	if err := repo.Update(ctx, locked); err != nil {
		t.Fatalf("更新状态失败: %v", err)
	}

	if err := svc.DeleteBook(ctx, b.ID); !apperrors.IsCode(err, apperrors.ErrCodeBookBorrowed) {
		t.Errorf("期望借阅中错误, 实际: %v", err)
	}

	// 归还后可删除
	locked.MarkReturned()
	if err := repo.Update(ctx, locked); err != nil {
		t.Fatalf("更新状态失败: %v", err)
	}
	if err := svc.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("删除图书失败: %v", err)
	}

	// 重复删除
	if err := svc.DeleteBook(ctx, b.ID); !apperrors.IsCode(err, apperrors.ErrCodeBookNotFound) {
		t.Errorf("期望图书不存在错误, 实际: %v", err)
	}
}

// TestListBooks_PagingDefaults 测试分页参数兜底
func TestListBooks_PagingDefaults(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		no := string(rune('A' + i))
		if _, err := svc.CreateBook(ctx, "B00"+no, "书"+no, "作者", "", ""); err != nil {
			t.Fatalf("新增图书失败: %v", err)
		}
	}

	// 非法分页参数自动兜底为page=1, size=20
	books, total, err := svc.ListBooks(ctx, ListQuery{Page: -1, Size: 0})
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if total != 3 || len(books) != 3 {
		t.Errorf("期望3本书, 实际total=%d, len=%d", total, len(books))
	}

	// 非法状态
	if _, _, err := svc.ListBooks(ctx, ListQuery{Status: Status("lost")}); !apperrors.IsCode(err, apperrors.ErrCodeInvalidParams) {
		t.Errorf("期望参数错误, 实际: %v", err)
	}
}

// TestStatusTransitions 测试图书状态迁移
func TestStatusTransitions(t *testing.T) {
	b := NewBook("B001", "书名", "作者", "", "")

	if !b.IsAvailable() {
		t.Error("新书应该在架")
	}

	if err := b.MarkBorrowed(); err != nil {
		t.Fatalf("借出失败: %v", err)
	}
	if b.Status != StatusBorrowed {
		t.Errorf("状态应该是borrowed, 实际: %s", b.Status)
	}

	// 已借出不能再次借出
	if err := b.MarkBorrowed(); !apperrors.IsCode(err, apperrors.ErrCodeAlreadyBorrowed) {
		t.Errorf("期望已借出错误, 实际: %v", err)
	}

	b.MarkReturned()
	if !b.IsAvailable() {
		t.Error("归还后应该在架")
	}
}
