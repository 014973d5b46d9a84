package database

import (
	"fmt"

	"github.com/wfunc/speed-memory/internal/logger"
	"github.com/wfunc/speed-memory/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate 为每种棋盘尺寸创建高分表
func AutoMigrate(db *gorm.DB, sizes []int) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}
	log := logger.WithModule("database")

	// 多个进程共用同一个 SQLite 文件时串行迁移
	if dbPath := sqlitePath(db); dbPath != "" {
		CleanupStaleLocks(dbPath)
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			log.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	log.Info("开始数据库迁移...", zap.Ints("board_sizes", sizes))

	for _, size := range sizes {
		table := models.HighScoreTable(size)
		if err := db.Table(table).AutoMigrate(&models.HighScore{}); err != nil {
			log.Error("迁移失败", zap.String("table", table), zap.Error(err))
			return fmt.Errorf("迁移 %s 失败: %w", table, err)
		}
		log.Debug("迁移成功", zap.String("table", table))
	}

	log.Info("数据库迁移完成")
	return nil
}
