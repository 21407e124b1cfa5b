package api

import (
	"math"
	"strconv"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 统计报表处理器
type StatisticsHandler struct{}

// NewStatisticsHandler 创建统计报表处理器
func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// 预算状态
const (
	StatusOverBudget   = "Over Budget"
	StatusWithinBudget = "Within Budget"
)

// MonthlySummaryResponse 月度汇总返回
type MonthlySummaryResponse struct {
	CurrentMonth   string  `json:"current_month" example:"2024-03"`
	CurrentTotal   float64 `json:"current_total" example:"1234.56"`
	CurrentCount   int64   `json:"current_count" example:"18"`
	AvgTransaction float64 `json:"avg_transaction" example:"68.59"`
	LastMonth      string  `json:"last_month" example:"2024-02"`
	LastTotal      float64 `json:"last_total" example:"980.00"`
}

// GetMonthlySummary 获取月度汇总
// @Summary 获取月度汇总
// @Description 统计当前用户本月消费总额、笔数、平均每笔金额，以及上月消费总额。月份按 date 列的 YYYY-MM 前缀匹配。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=MonthlySummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/monthly-summary [get]
func (h *StatisticsHandler) GetMonthlySummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	currentMonth := now.Format("2006-01")
	// 本月第一天的前一天落在上个月
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := firstOfMonth.AddDate(0, 0, -1).Format("2006-01")

	type monthAgg struct {
		Total float64
		Count int64
	}
	var current monthAgg
	database.DB.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date LIKE ?", userID, currentMonth+"%").
		Scan(&current)

	var lastTotal float64
	database.DB.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date LIKE ?", userID, lastMonth+"%").
		Scan(&lastTotal)

	var avg float64
	if current.Count > 0 {
		avg = current.Total / float64(current.Count)
	}

	Success(c, MonthlySummaryResponse{
		CurrentMonth:   currentMonth,
		CurrentTotal:   current.Total,
		CurrentCount:   current.Count,
		AvgTransaction: avg,
		LastMonth:      lastMonth,
		LastTotal:      lastTotal,
	})
}

// BudgetPerformanceItem 单个类别的预算执行情况
type BudgetPerformanceItem struct {
	Category   string   `json:"category" example:"Food"`
	Budget     float64  `json:"budget" example:"300"`
	Color      string   `json:"color" example:"#FF6B6B"`
	Icon       string   `json:"icon" example:"🍔"`
	Spent      float64  `json:"spent" example:"42.50"`
	Remaining  float64  `json:"remaining" example:"257.50"`
	Percentage *float64 `json:"percentage" example:"14.2"` // budget 为 0 时为 null（不适用）
	Status     string   `json:"status" example:"Within Budget"`
}

// GetBudgetPerformance 获取预算执行情况
// @Summary 获取预算执行情况
// @Description 对每个类别统计当前用户本月按类别名称匹配的消费总额，计算剩余额度、使用百分比（保留一位小数，预算为 0 时为 null）和状态（Over Budget / Within Budget）
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]BudgetPerformanceItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/budget-performance [get]
func (h *StatisticsHandler) GetBudgetPerformance(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	monthPrefix := time.Now().Format("2006-01")

	type budgetRow struct {
		Name   string
		Budget float64
		Color  string
		Icon   string
		Spent  float64
	}
	var rows []budgetRow
	// 类别按名称文本匹配消费记录，非外键关联
	if err := database.DB.Table("categories").
		Select("categories.name, categories.budget, categories.color, categories.icon, COALESCE(SUM(expenses.amount), 0) AS spent").
		Joins("LEFT JOIN expenses ON expenses.category = categories.name AND expenses.user_id = ? AND expenses.date LIKE ?",
			userID, monthPrefix+"%").
		Group("categories.id, categories.name, categories.budget, categories.color, categories.icon").
		Order("categories.name ASC").
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	items := make([]BudgetPerformanceItem, 0, len(rows))
	for _, r := range rows {
		item := BudgetPerformanceItem{
			Category:  r.Name,
			Budget:    r.Budget,
			Color:     r.Color,
			Icon:      r.Icon,
			Spent:     r.Spent,
			Remaining: r.Budget - r.Spent,
		}
		// 预算为 0 时百分比无意义，置 null 而不是除零
		if r.Budget > 0 {
			pct := math.Round(r.Spent/r.Budget*1000) / 10
			item.Percentage = &pct
		}
		if item.Remaining < 0 {
			item.Status = StatusOverBudget
		} else {
			item.Status = StatusWithinBudget
		}
		items = append(items, item)
	}

	Success(c, items)
}

// CategorySpendingItem 按类别的消费统计
type CategorySpendingItem struct {
	Category string  `json:"category" example:"Food"`
	Total    float64 `json:"total" example:"420.50"`
	Count    int64   `json:"count" example:"12"`
}

// GetCategorySpending 获取最近 N 天按类别的消费统计
// @Summary 获取按类别消费统计
// @Description 统计当前用户最近 N 天（默认 30，1-365）按类别分组的消费总额和笔数，按总额降序排列
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param days query int false "统计天数" default(30)
// @Success 200 {object} Response{data=[]CategorySpendingItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/category-spending [get]
func (h *StatisticsHandler) GetCategorySpending(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	startDate := time.Now().AddDate(0, 0, -days).Format(models.DateLayout)

	var stats []CategorySpendingItem
	if err := database.DB.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date >= ?", userID, startDate).
		Group("category").
		Order("total DESC").
		Scan(&stats).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"days":       days,
		"start_date": startDate,
		"stats":      stats,
	})
}

// MonthlyTrendItem 单月消费统计
type MonthlyTrendItem struct {
	Month string  `json:"month" example:"2024-03"`
	Total float64 `json:"total" example:"1234.56"`
	Count int64   `json:"count" example:"18"`
}

// GetMonthlyTrend 获取月度消费趋势
// @Summary 获取月度消费趋势
// @Description 统计当前用户最近 N 个月（默认 6，1-24）按月分组的消费总额和笔数，按月份升序排列。月份取 date 列的前 7 位（YYYY-MM）。
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param months query int false "统计月数" default(6)
// @Success 200 {object} Response{data=[]MonthlyTrendItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/monthly-trend [get]
func (h *StatisticsHandler) GetMonthlyTrend(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	months, err := strconv.Atoi(c.DefaultQuery("months", "6"))
	if err != nil || months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}
	startDate := time.Now().AddDate(0, -months, 0).Format(models.DateLayout)

	var trend []MonthlyTrendItem
	if err := database.DB.Model(&models.Expense{}).
		Select("substr(date, 1, 7) AS month, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date >= ?", userID, startDate).
		Group("month").
		Order("month ASC").
		Scan(&trend).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, gin.H{
		"months":     months,
		"start_date": startDate,
		"trend":      trend,
	})
}
