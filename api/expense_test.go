package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 使用独立的共享缓存内存库跑真实 SQL，
// 统计类接口的原生 SQL 片段（LIKE 前缀、substr、LEFT JOIN）在 mock 上验证不了
func setupTestDB(t *testing.T) func() {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Expense{},
		&models.Category{},
		&models.PaymentMethod{},
	))
	cats := models.DefaultCategories()
	require.NoError(t, db.Create(&cats).Error)
	methods := models.DefaultPaymentMethods()
	require.NoError(t, db.Create(&methods).Error)

	oldDB := database.DB
	database.DB = db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func createTestUser(t *testing.T, username string) models.User {
	user := models.User{Username: username, Password: "hash"}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func createTestExpense(t *testing.T, userID uint, date string, amount float64, category string) models.Expense {
	expense := models.Expense{
		UserID: userID, Date: date, Amount: amount,
		Category: category, PaymentMethod: "Cash",
	}
	require.NoError(t, database.DB.Create(&expense).Error)
	return expense
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func expenseRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	h := NewExpenseHandler(&config.Config{})
	router.POST("/expenses", h.Create)
	router.GET("/expenses", h.List)
	router.GET("/expenses/:id", h.Get)
	router.PUT("/expenses/:id", h.Update)
	router.DELETE("/expenses/:id", h.Delete)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestExpenseHandler_CreateAndGet(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	router := expenseRouter(user.ID)

	body := `{"date":"2024-03-15","amount":42.50,"category":"Food","description":"午餐","payment_method":"Cash"}`
	w := doJSON(router, "POST", "/expenses", body)
	assert.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	id := uint(data["id"].(float64))
	assert.Equal(t, float64(user.ID), data["user_id"])

	// 创建后可按ID读回
	w = doJSON(router, "GET", fmt.Sprintf("/expenses/%d", id), "")
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "2024-03-15", data["date"])
	assert.Equal(t, 42.50, data["amount"])
	assert.Equal(t, "Food", data["category"])
}

func TestExpenseHandler_Create_InvalidCategory(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	router := expenseRouter(user.ID)

	body := `{"date":"2024-03-15","amount":10,"category":"NotARealCategory","payment_method":"Cash"}`
	w := doJSON(router, "POST", "/expenses", body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "无效的消费类别")
}

func TestExpenseHandler_Create_InvalidPaymentMethod(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	router := expenseRouter(user.ID)

	body := `{"date":"2024-03-15","amount":10,"category":"Food","payment_method":"Barter"}`
	w := doJSON(router, "POST", "/expenses", body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "无效的支付方式")
}

func TestExpenseHandler_Create_InvalidDate(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	router := expenseRouter(user.ID)

	body := `{"date":"15/03/2024","amount":10,"category":"Food","payment_method":"Cash"}`
	w := doJSON(router, "POST", "/expenses", body)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "日期格式错误")
}

func TestExpenseHandler_Create_NonPositiveAmount(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	router := expenseRouter(user.ID)

	w := doJSON(router, "POST", "/expenses", `{"date":"2024-03-15","amount":0,"category":"Food","payment_method":"Cash"}`)
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "POST", "/expenses", `{"date":"2024-03-15","amount":-5,"category":"Food","payment_method":"Cash"}`)
	assert.Equal(t, 400, w.Code)
}

func TestExpenseHandler_OwnershipIsolation(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	expense := createTestExpense(t, alice.ID, "2024-03-15", 42.50, "Food")

	// 他人的记录表现为不存在，而不是无权限
	bobRouter := expenseRouter(bob.ID)
	w := doJSON(bobRouter, "GET", fmt.Sprintf("/expenses/%d", expense.ID), "")
	assert.Equal(t, 404, w.Code)

	w = doJSON(bobRouter, "PUT", fmt.Sprintf("/expenses/%d", expense.ID), `{"amount":1}`)
	assert.Equal(t, 404, w.Code)

	w = doJSON(bobRouter, "DELETE", fmt.Sprintf("/expenses/%d", expense.ID), "")
	assert.Equal(t, 404, w.Code)

	// 记录本身未受影响
	var count int64
	database.DB.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// 列表互不可见
	w = doJSON(bobRouter, "GET", "/expenses", "")
	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
}

func TestExpenseHandler_Update(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	expense := createTestExpense(t, user.ID, "2024-03-15", 42.50, "Food")
	router := expenseRouter(user.ID)

	w := doJSON(router, "PUT", fmt.Sprintf("/expenses/%d", expense.ID),
		`{"amount":99.99,"category":"Shopping","description":"新键盘"}`)
	assert.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "更新成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 99.99, data["amount"])
	assert.Equal(t, "Shopping", data["category"])
	assert.Equal(t, "新键盘", data["description"])
	// 未提供的字段保持原值
	assert.Equal(t, "2024-03-15", data["date"])
}

func TestExpenseHandler_Update_NoFields(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	expense := createTestExpense(t, user.ID, "2024-03-15", 42.50, "Food")
	router := expenseRouter(user.ID)

	w := doJSON(router, "PUT", fmt.Sprintf("/expenses/%d", expense.ID), `{}`)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "无需更新")
}

func TestExpenseHandler_Update_InvalidCategory(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	expense := createTestExpense(t, user.ID, "2024-03-15", 42.50, "Food")
	router := expenseRouter(user.ID)

	w := doJSON(router, "PUT", fmt.Sprintf("/expenses/%d", expense.ID), `{"category":"Nope"}`)
	assert.Equal(t, 400, w.Code)
}

func TestExpenseHandler_Delete(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	expense := createTestExpense(t, user.ID, "2024-03-15", 42.50, "Food")
	router := expenseRouter(user.ID)

	w := doJSON(router, "DELETE", fmt.Sprintf("/expenses/%d", expense.ID), "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "删除成功")

	// 重复删除返回 404
	w = doJSON(router, "DELETE", fmt.Sprintf("/expenses/%d", expense.ID), "")
	assert.Equal(t, 404, w.Code)
}

func TestExpenseHandler_List_FiltersAndOrder(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	createTestExpense(t, user.ID, "2024-03-10", 10, "Food")
	createTestExpense(t, user.ID, "2024-03-20", 20, "Shopping")
	third := createTestExpense(t, user.ID, "2024-03-20", 30, "Food")
	router := expenseRouter(user.ID)

	// 默认按日期倒序，同日按ID倒序
	w := doJSON(router, "GET", "/expenses", "")
	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
	list := data["list"].([]interface{})
	require.Len(t, list, 3)
	first := list[0].(map[string]interface{})
	assert.Equal(t, float64(third.ID), first["id"])

	// 类别筛选
	w = doJSON(router, "GET", "/expenses?category=Food", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])

	// 日期范围筛选
	w = doJSON(router, "GET", "/expenses?start_date=2024-03-15&end_date=2024-03-25", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])

	// 金额范围筛选
	w = doJSON(router, "GET", "/expenses?min_amount=15&max_amount=25", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	// 分页
	w = doJSON(router, "GET", "/expenses?page=2&page_size=2", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, float64(2), data["page"])
	list = data["list"].([]interface{})
	assert.Len(t, list, 1)
}

func TestExpenseHandler_UpdateRefreshesUpdatedAt(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, "alice")
	expense := createTestExpense(t, user.ID, "2024-03-15", 42.50, "Food")
	// 回拨 updated_at 以便观察更新后变化
	old := time.Now().Add(-time.Hour)
	require.NoError(t, database.DB.Model(&models.Expense{}).Where("id = ?", expense.ID).
		UpdateColumn("updated_at", old).Error)

	router := expenseRouter(user.ID)
	w := doJSON(router, "PUT", fmt.Sprintf("/expenses/%d", expense.ID), `{"amount":50}`)
	assert.Equal(t, 200, w.Code)

	var updated models.Expense
	require.NoError(t, database.DB.First(&updated, expense.ID).Error)
	assert.True(t, updated.UpdatedAt.After(old))
}
