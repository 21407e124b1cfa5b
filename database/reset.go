package database

import (
	"fmt"
	"log"

	"expensetracker/config"
	"expensetracker/models"
)

// Reset 删除全部表后重建并重新填充默认参考数据
// 警告：会清空所有用户和消费记录
func Reset(cfg *config.Config) error {
	db, err := open(cfg)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	DB = db

	// 先删子表再删父表，避免外键约束报错
	if err := db.Migrator().DropTable(
		&models.Expense{},
		&models.User{},
		&models.Category{},
		&models.PaymentMethod{},
	); err != nil {
		return fmt.Errorf("删除表失败: %w", err)
	}
	log.Println("已删除全部数据表")

	if err := migrate(db); err != nil {
		return fmt.Errorf("重建表失败: %w", err)
	}
	if err := seed(db); err != nil {
		return err
	}

	log.Println("数据库重置完成")
	return nil
}
