package models

import "time"

// User 用户模型
// 注册后不再修改，删除用户时级联删除其全部消费记录
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
