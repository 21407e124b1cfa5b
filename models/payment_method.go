package models

// 支付方式类型
const (
	PaymentTypeCash    = "Cash"
	PaymentTypeCard    = "Card"
	PaymentTypeDigital = "Digital"
	PaymentTypeOther   = "Other"
)

// PaymentMethod 支付方式（全局共享）
type PaymentMethod struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Type string `json:"type" gorm:"size:20;default:Cash"`
}

// TableName 设置表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// DefaultPaymentMethods 内置的六种默认支付方式
func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{Name: "Cash", Type: PaymentTypeCash},
		{Name: "Credit Card", Type: PaymentTypeCard},
		{Name: "Debit Card", Type: PaymentTypeCard},
		{Name: "Bank Transfer", Type: PaymentTypeDigital},
		{Name: "Mobile Payment", Type: PaymentTypeDigital},
		{Name: "Check", Type: PaymentTypeOther},
	}
}
