package api

import (
	"log"
	"strconv"
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(cfg *config.Config) *ExpenseHandler {
	return &ExpenseHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Date          string  `json:"date" binding:"required" example:"2024-03-15"`
	Amount        float64 `json:"amount" binding:"required,gt=0" example:"42.50"`
	Category      string  `json:"category" binding:"required" example:"Food"`
	Description   string  `json:"description" example:"午餐"`
	Tags          string  `json:"tags" example:"lunch,work"`
	PaymentMethod string  `json:"payment_method" binding:"required" example:"Cash"`
	Recurring     bool    `json:"recurring" example:"false"`
}

// UpdateExpenseRequest 更新消费记录请求
// 指针字段区分“未提供”和“清空”
type UpdateExpenseRequest struct {
	Date          string  `json:"date" example:"2024-03-15"`
	Amount        float64 `json:"amount" binding:"omitempty,gt=0" example:"42.50"`
	Category      string  `json:"category" example:"Food"`
	Description   *string `json:"description" example:"午餐"`
	Tags          *string `json:"tags" example:"lunch,work"`
	PaymentMethod string  `json:"payment_method" example:"Cash"`
	Recurring     *bool   `json:"recurring" example:"false"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page          int     `form:"page" example:"1"`
	PageSize      int     `form:"page_size" example:"20"`
	Category      string  `form:"category" example:"Food"`
	PaymentMethod string  `form:"payment_method" example:"Cash"`
	StartDate     string  `form:"start_date" example:"2024-01-01"`
	EndDate       string  `form:"end_date" example:"2024-12-31"`
	MinAmount     float64 `form:"min_amount" example:"0"`
	MaxAmount     float64 `form:"max_amount" example:"0"`
}

// validCategory 校验类别是否存在于参考表（来源于数据库，非外键约束）
func validCategory(name string) bool {
	var cat models.Category
	return database.DB.Where("name = ?", name).First(&cat).Error == nil
}

// validPaymentMethod 校验支付方式是否存在于参考表
func validPaymentMethod(name string) bool {
	var pm models.PaymentMethod
	return database.DB.Where("name = ?", name).First(&pm).Error == nil
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，金额必须大于 0，类别和支付方式必须存在于参考表
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 日期必须是 YYYY-MM-DD，按月统计依赖该格式
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if !validCategory(req.Category) {
		BadRequest(c, "无效的消费类别")
		return
	}

	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if !validPaymentMethod(req.PaymentMethod) {
		BadRequest(c, "无效的支付方式")
		return
	}

	expense := models.Expense{
		UserID:        userID,
		Date:          req.Date,
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		Tags:          req.Tags,
		PaymentMethod: req.PaymentMethod,
		Recurring:     req.Recurring,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	// 超支提醒（尽力而为，不影响创建结果）
	h.notifyIfOverBudget(&expense)

	SuccessWithMessage(c, "创建成功", expense)
}

// notifyIfOverBudget 记账后检查该类别当月是否超出预算，超出则发送提醒邮件
func (h *ExpenseHandler) notifyIfOverBudget(expense *models.Expense) {
	if !h.cfg.Email.Enabled {
		return
	}

	var cat models.Category
	if err := database.DB.Where("name = ?", expense.Category).First(&cat).Error; err != nil {
		return
	}
	if cat.Budget <= 0 {
		// 未设预算的类别不提醒
		return
	}

	monthPrefix := expense.Date[:7]
	var spent float64
	database.DB.Model(&models.Expense{}).
		Where("user_id = ? AND category = ? AND date LIKE ?", expense.UserID, expense.Category, monthPrefix+"%").
		Select("COALESCE(SUM(amount), 0)").Scan(&spent)

	if spent <= cat.Budget {
		return
	}

	var user models.User
	database.DB.First(&user, expense.UserID)
	if err := h.emailService.SendBudgetAlert(user.Username, cat.Name, monthPrefix, spent, cat.Budget); err != nil {
		log.Printf("发送超支提醒失败: %v", err)
	}
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录，支持类别、支付方式、日期范围、金额范围筛选和分页，按日期倒序（同日按ID倒序）
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param category query string false "类别筛选"
// @Param payment_method query string false "支付方式筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)

	// 类别筛选
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	// 支付方式筛选
	if req.PaymentMethod != "" {
		query = query.Where("payment_method = ?", req.PaymentMethod)
	}

	// 日期范围筛选（YYYY-MM-DD 文本可直接按字典序比较）
	if req.StartDate != "" {
		if _, err := time.Parse(models.DateLayout, req.StartDate); err == nil {
			query = query.Where("date >= ?", req.StartDate)
		}
	}
	if req.EndDate != "" {
		if _, err := time.Parse(models.DateLayout, req.EndDate); err == nil {
			query = query.Where("date <= ?", req.EndDate)
		}
	}

	// 金额范围筛选
	if req.MinAmount > 0 {
		query = query.Where("amount >= ?", req.MinAmount)
	}
	if req.MaxAmount > 0 {
		query = query.Where("amount <= ?", req.MaxAmount)
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var expenses []models.Expense
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Description 根据ID获取消费记录详情，只能查看自己的记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 更新指定的消费记录，只能更新自己的记录；只更新请求中提供的字段
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body UpdateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 更新字段
	updates := make(map[string]interface{})
	if req.Date != "" {
		if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
		updates["date"] = req.Date
	}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Category != "" {
		req.Category = strings.TrimSpace(req.Category)
		if !validCategory(req.Category) {
			BadRequest(c, "无效的消费类别")
			return
		}
		updates["category"] = req.Category
	}
	if req.PaymentMethod != "" {
		req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
		if !validPaymentMethod(req.PaymentMethod) {
			BadRequest(c, "无效的支付方式")
			return
		}
		updates["payment_method"] = req.PaymentMethod
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.Recurring != nil {
		updates["recurring"] = *req.Recurring
	}

	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", expense)
		return
	}

	// Updates 会同时刷新 updated_at
	if err := database.DB.Model(&expense).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	// 重新获取更新后的记录
	database.DB.First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除指定的消费记录，只能删除自己的记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	// 按归属谓词直接删除，通过影响行数判断记录是否存在
	result := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Expense{})
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "记录不存在")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
