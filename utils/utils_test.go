package utils

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nssc-portal/models"
)

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		otp := GenerateOTP()
		require.Len(t, otp, 6)
		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateProfileID(t *testing.T) {
	id := GenerateProfileID(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^2025[0-9A-Z]{8}$`), id)
}

func TestPagination(t *testing.T) {
	offset, page, limit := Pagination(3, 20)
	assert.Equal(t, []int{40, 3, 20}, []int{offset, page, limit})

	offset, page, limit = Pagination(0, 0)
	assert.Equal(t, []int{0, 1, 10}, []int{offset, page, limit})

	_, _, limit = Pagination(1, 1000)
	assert.Equal(t, 100, limit)
}

func TestPurgeStaleOTPs(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.OTP{}))

	now := time.Now()
	require.NoError(t, db.Create(&[]models.OTP{
		{Email: "a@b.com", Code: "111111", ExpiresAt: now.Add(-time.Minute)},
		{Email: "a@b.com", Code: "222222", ExpiresAt: now.Add(time.Minute), IsDeleted: true},
		{Email: "a@b.com", Code: "333333", ExpiresAt: now.Add(time.Minute)},
	}).Error)

	assert.Equal(t, int64(2), PurgeStaleOTPs(db, zap.NewNop(), now))

	var left []models.OTP
	require.NoError(t, db.Unscoped().Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "333333", left[0].Code)
}
