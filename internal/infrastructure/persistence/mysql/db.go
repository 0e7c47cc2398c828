package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	// 注意：这里使用GORM的模型定义（带tag），不是domain层的实体
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&BorrowRecordModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
// 4. 用户不做软删除：借阅台账永久引用用户，删除会破坏审计链
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role      string    `gorm:"size:20;not null;default:user;comment:角色(user/admin)"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. BookNo是馆藏编号(业务主键),唯一索引防止重复
// 2. ISBN/Publisher允许为空(著录信息可能不全)
// 3. Status与未归还借阅记录在同一事务内维护
// 4. 软删除:下架的图书不物理删除,历史借阅记录仍可关联查询
type BookModel struct {
	ID        uint           `gorm:"primaryKey"`
	BookNo    string         `gorm:"uniqueIndex;size:50;not null;comment:馆藏编号"`
	Title     string         `gorm:"index:idx_search;size:200;not null;comment:书名"` // 搜索索引
	Author    string         `gorm:"index:idx_search;size:100;not null;comment:作者"` // 搜索索引
	ISBN      string         `gorm:"size:20;comment:ISBN号(可选)"`
	Publisher string         `gorm:"size:100;comment:出版社(可选)"`
	Status    string         `gorm:"index;size:20;not null;default:available;comment:状态(available/borrowed)"`
	CreatedAt time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BorrowRecordModel GORM借阅记录模型
// 教学要点:
// 1. ReturnTime为NULL表示未归还(在借)
// 2. idx_open复合索引覆盖两条热路径查询:
//    - 某图书的未归还记录(book_id + return_time IS NULL)
//    - 某用户的未归还记录数(user_id + return_time IS NULL)
// 3. 记录只追加、只关闭,永不删除
type BorrowRecordModel struct {
	ID         uint       `gorm:"primaryKey"`
	BookID     uint       `gorm:"index:idx_book_open;not null;comment:图书ID"`
	UserID     uint       `gorm:"index:idx_user_open;not null;comment:借阅人用户ID"`
	BorrowTime time.Time  `gorm:"index;not null;comment:借出时间"`
	ReturnTime *time.Time `gorm:"index:idx_book_open;index:idx_user_open;comment:归还时间(NULL表示在借)"`
	Note       string     `gorm:"size:500;comment:借阅备注"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`

	// 关联(查询时Preload)
	Book *BookModel `gorm:"foreignKey:BookID"`
	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName 指定表名
func (BorrowRecordModel) TableName() string {
	return "borrow_records"
}
