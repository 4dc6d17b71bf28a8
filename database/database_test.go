package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nssc-portal/config"
	"nssc-portal/models"
)

func TestConnectDb_SQLiteMigrates(t *testing.T) {
	db, err := ConnectDb(&config.Config{DBDriver: "sqlite", DBName: "file::memory:"}, zap.NewNop())
	require.NoError(t, err)

	for _, m := range []any{&models.User{}, &models.OTP{}, &models.LoginTracking{}, &models.Permission{}, &models.Document{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestConnectDb_UnknownDriver(t *testing.T) {
	_, err := ConnectDb(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := ConnectRedis(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = ConnectRedis(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	assert.Error(t, err)
}
