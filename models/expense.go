package models

import "time"

// DateLayout 消费日期的存储格式
// date 列存 YYYY-MM-DD 文本，按月统计依赖该格式做前缀匹配，
// 入库前必须用此格式校验
const DateLayout = "2006-01-02"

// Expense 消费记录模型
type Expense struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	Date          string    `json:"date" gorm:"size:10;not null;index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null;check:amount > 0"`
	Category      string    `json:"category" gorm:"size:50;not null"`
	Description   string    `json:"description" gorm:"size:255;default:''"`
	Tags          string    `json:"tags" gorm:"size:255;default:''"` // 逗号分隔
	PaymentMethod string    `json:"payment_method" gorm:"size:50;default:Cash"`
	Recurring     bool      `json:"recurring" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	User          User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
