package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 在临时目录中创建 SQLite 数据库
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "scores.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateTestHighScore 创建测试高分记录
func CreateTestHighScore(player string, score int, hundredths int64) *models.HighScore {
	return &models.HighScore{
		Player:     player,
		Score:      score,
		Time:       game.FormatHundredths(hundredths),
		Hundredths: hundredths,
	}
}
