package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 解析并校验导出的日期范围，返回范围内当前用户的消费记录
func exportRange(c *gin.Context) ([]models.Expense, string, string, bool) {
	userID := middleware.GetCurrentUserID(c)

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if startDate == "" || endDate == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return nil, "", "", false
	}
	if _, err := time.Parse(models.DateLayout, startDate); err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return nil, "", "", false
	}
	if _, err := time.Parse(models.DateLayout, endDate); err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return nil, "", "", false
	}

	var expenses []models.Expense
	if err := database.DB.Where("user_id = ? AND date >= ? AND date <= ?", userID, startDate, endDate).
		Order("date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, "", "", false
	}

	return expenses, startDate, endDate, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录为 CSV
// @Description 根据日期范围导出当前用户的消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, startDate, endDate, ok := exportRange(c)
	if !ok {
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	// 写入表头
	headers := []string{"ID", "日期", "金额", "类别", "描述", "标签", "支付方式", "周期性", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 写入数据
	for _, expense := range expenses {
		row := []string{
			fmt.Sprintf("%d", expense.ID),
			expense.Date,
			fmt.Sprintf("%.2f", expense.Amount),
			expense.Category,
			expense.Description,
			expense.Tags,
			expense.PaymentMethod,
			strconv.FormatBool(expense.Recurring),
			expense.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 设置响应头
	filename := fmt.Sprintf("expenses_%s_%s.csv", startDate, endDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Description 根据日期范围导出当前用户的消费记录为 JSON 格式，附带总额和笔数汇总
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	expenses, startDate, endDate, ok := exportRange(c)
	if !ok {
		return
	}

	// 计算汇总信息
	var totalAmount float64
	for _, expense := range expenses {
		totalAmount += expense.Amount
	}

	Success(c, gin.H{
		"start_date":   startDate,
		"end_date":     endDate,
		"total_count":  len(expenses),
		"total_amount": totalAmount,
		"expenses":     expenses,
	})
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 根据日期范围导出当前用户的消费记录为带样式的 xlsx 文件，末行附总计
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2024-01-01)"
// @Param end_date query string true "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, startDate, endDate, ok := exportRange(c)
	if !ok {
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 16)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "G", 16)
	f.SetColWidth(sheetName, "H", "H", 10)

	// 写入表头
	headers := []string{"ID", "日期", "金额", "类别", "描述", "标签", "支付方式", "周期性"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	var totalAmount float64
	for i, expense := range expenses {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), expense.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), expense.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), expense.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), expense.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), expense.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), expense.Tags)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), expense.PaymentMethod)
		if expense.Recurring {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), "是")
		} else {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), "否")
		}

		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), dataStyle)
		totalAmount += expense.Amount
	}

	// 添加汇总行
	summaryRow := len(expenses) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "总计")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("%d 笔", len(expenses)))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), totalAmount)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	// 输出文件
	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", startDate, endDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
