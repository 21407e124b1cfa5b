package database

import (
	"fmt"
	"log"
	"strings"

	"expensetracker/config"
	"expensetracker/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接，迁移表结构并填充默认参考数据
func Init(cfg *config.Config) error {
	db, err := open(cfg)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	DB = db

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	if err := migrate(DB); err != nil {
		return err
	}
	if err := seed(DB); err != nil {
		return err
	}

	log.Println("数据库初始化成功")
	return nil
}

// open 按配置选择驱动建立连接
func open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch cfg.Database.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
			cfg.Database.Charset,
		)
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "", "sqlite":
		// 开启外键约束，保证删除用户时级联删除消费记录
		dsn := cfg.Database.Path
		if strings.Contains(dsn, "?") {
			dsn += "&_pragma=foreign_keys(1)"
		} else {
			dsn += "?_pragma=foreign_keys(1)"
		}
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}
}

// migrate 自动迁移数据库表
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Expense{},
		&models.Category{},
		&models.PaymentMethod{},
	)
}

// seed 初始化默认参考数据（仅当表为空时）
func seed(db *gorm.DB) error {
	var catCount int64
	db.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		cats := models.DefaultCategories()
		if err := db.Create(&cats).Error; err != nil {
			return fmt.Errorf("初始化默认类别失败: %w", err)
		}
		log.Printf("已初始化 %d 个默认消费类别", len(cats))
	}

	var pmCount int64
	db.Model(&models.PaymentMethod{}).Count(&pmCount)
	if pmCount == 0 {
		methods := models.DefaultPaymentMethods()
		if err := db.Create(&methods).Error; err != nil {
			return fmt.Errorf("初始化默认支付方式失败: %w", err)
		}
		log.Printf("已初始化 %d 个默认支付方式", len(methods))
	}

	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
