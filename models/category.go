package models

import "time"

// Category 消费类别（全局共享，含每月预算上限）
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Budget    float64   `json:"budget" gorm:"type:decimal(10,2);default:0"` // 每月预算上限，0 表示未设预算
	Color     string    `json:"color" gorm:"size:20;default:#FF6B6B"`       // 颜色代码，如 #FF6B6B
	Icon      string    `json:"icon" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// DefaultCategories 内置的九个默认消费类别
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food", Budget: 300, Color: "#FF6B6B", Icon: "🍔"},
		{Name: "Transportation", Budget: 150, Color: "#4ECDC4", Icon: "🚗"},
		{Name: "Housing", Budget: 800, Color: "#45B7D1", Icon: "🏠"},
		{Name: "Entertainment", Budget: 200, Color: "#96CEB4", Icon: "🎬"},
		{Name: "Utilities", Budget: 250, Color: "#FFE6A7", Icon: "⚡"},
		{Name: "Healthcare", Budget: 200, Color: "#D3D3D3", Icon: "🏥"},
		{Name: "Shopping", Budget: 300, Color: "#FFB6C1", Icon: "🛍️"},
		{Name: "Education", Budget: 150, Color: "#87CEEB", Icon: "📚"},
		{Name: "Others", Budget: 100, Color: "#D3D3D3", Icon: "💼"},
	}
}
