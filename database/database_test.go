package database

import (
	"testing"

	"expensetracker/config"
	"expensetracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryConfig 每个测试使用独立的共享缓存内存库，
// 连接池多连接复用时仍指向同一份数据
func memoryConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   "file:" + t.Name() + "?mode=memory&cache=shared",
		},
	}
}

func TestInitSeedsDefaults(t *testing.T) {
	require.NoError(t, Init(memoryConfig(t)))
	defer func() { DB = nil }()

	var cats []models.Category
	require.NoError(t, DB.Order("id").Find(&cats).Error)
	require.Len(t, cats, 9)
	assert.Equal(t, "Food", cats[0].Name)
	assert.Equal(t, 300.0, cats[0].Budget)
	assert.Equal(t, "#FF6B6B", cats[0].Color)
	assert.Equal(t, "Others", cats[8].Name)

	var methods []models.PaymentMethod
	require.NoError(t, DB.Order("id").Find(&methods).Error)
	require.Len(t, methods, 6)
	assert.Equal(t, "Cash", methods[0].Name)
	assert.Equal(t, models.PaymentTypeCash, methods[0].Type)
	assert.Equal(t, "Check", methods[5].Name)
	assert.Equal(t, models.PaymentTypeOther, methods[5].Type)
}

func TestInitSeedOnlyWhenEmpty(t *testing.T) {
	cfg := memoryConfig(t)
	require.NoError(t, Init(cfg))
	defer func() { DB = nil }()

	// 重复执行迁移与填充不会重复插入
	require.NoError(t, migrate(DB))
	require.NoError(t, seed(DB))

	var catCount int64
	DB.Model(&models.Category{}).Count(&catCount)
	assert.Equal(t, int64(9), catCount)
}

func TestResetDropsData(t *testing.T) {
	cfg := memoryConfig(t)
	require.NoError(t, Init(cfg))
	defer func() { DB = nil }()

	user := models.User{Username: "alice", Password: "x"}
	require.NoError(t, DB.Create(&user).Error)
	require.NoError(t, DB.Create(&models.Expense{
		UserID: user.ID, Date: "2024-03-15", Amount: 42.50,
		Category: "Food", PaymentMethod: "Cash",
	}).Error)

	// Reset 会新开连接，内存库会随旧连接销毁，这里复用同一个句柄验证删表重建逻辑
	require.NoError(t, DB.Migrator().DropTable(
		&models.Expense{}, &models.User{}, &models.Category{}, &models.PaymentMethod{},
	))
	require.NoError(t, migrate(DB))
	require.NoError(t, seed(DB))

	var userCount, catCount int64
	DB.Model(&models.User{}).Count(&userCount)
	DB.Model(&models.Category{}).Count(&catCount)
	assert.Equal(t, int64(0), userCount)
	assert.Equal(t, int64(9), catCount)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := open(&config.Config{Database: config.DatabaseConfig{Driver: "postgres"}})
	assert.Error(t, err)
}

func TestAmountCheckConstraint(t *testing.T) {
	require.NoError(t, Init(memoryConfig(t)))
	defer func() { DB = nil }()

	user := models.User{Username: "bob", Password: "x"}
	require.NoError(t, DB.Create(&user).Error)

	// 存储层兜底拒绝非正金额
	err := DB.Create(&models.Expense{
		UserID: user.ID, Date: "2024-03-15", Amount: -1,
		Category: "Food", PaymentMethod: "Cash",
	}).Error
	assert.Error(t, err)
}
