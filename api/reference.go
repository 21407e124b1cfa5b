package api

import (
	"expensetracker/database"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler 参考数据处理器（类别与支付方式，全局共享、只读）
type ReferenceHandler struct{}

// NewReferenceHandler 创建参考数据处理器
func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

// GetCategories 获取消费类别列表
// @Summary 获取消费类别列表
// @Description 获取所有消费类别（含每月预算、颜色、图标），按名称升序排列
// @Tags 参考数据
// @Produce json
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 500 {object} Response "查询失败"
// @Router /api/v1/categories [get]
func (h *ReferenceHandler) GetCategories(c *gin.Context) {
	var list []models.Category
	if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// GetPaymentMethods 获取支付方式列表
// @Summary 获取支付方式列表
// @Description 获取所有支付方式，按名称升序排列
// @Tags 参考数据
// @Produce json
// @Success 200 {object} Response{data=[]models.PaymentMethod} "获取成功"
// @Failure 500 {object} Response "查询失败"
// @Router /api/v1/payment-methods [get]
func (h *ReferenceHandler) GetPaymentMethods(c *gin.Context) {
	var list []models.PaymentMethod
	if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}
