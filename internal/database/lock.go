package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wfunc/speed-memory/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	lockSuffix       = ".migration.lock"
	lockAttempts     = 30
	lockRetryDelay   = 200 * time.Millisecond
	lockStaleTimeout = 5 * time.Minute
)

// acquireMigrationLock 以独占方式创建锁文件
func acquireMigrationLock(dbPath string) (*os.File, error) {
	lockPath := dbPath + lockSuffix
	log := logger.WithModule("database")

	for i := 0; i < lockAttempts; i++ {
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			log.Debug("获取迁移锁成功", zap.String("lock", lockPath))
			return lockFile, nil
		}

		// 锁文件过旧说明持有者已退出
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleTimeout {
			log.Warn("迁移锁文件过期，尝试删除", zap.String("lock", lockPath))
			os.Remove(lockPath)
			continue
		}

		log.Debug("等待迁移锁...", zap.Int("attempt", i+1))
		time.Sleep(lockRetryDelay)
	}

	return nil, fmt.Errorf("无法获取迁移锁，可能有其他进程正在执行迁移")
}

// releaseMigrationLock 释放迁移锁
func releaseMigrationLock(lockFile *os.File) {
	if lockFile == nil {
		return
	}
	lockPath := lockFile.Name()
	lockFile.Close()
	os.Remove(lockPath)
	logger.WithModule("database").Debug("释放迁移锁", zap.String("lock", lockPath))
}

// sqlitePath SQLite 数据库文件路径，其他驱动或内存库返回空
func sqlitePath(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "sqlite", "sqlite3":
	default:
		return ""
	}

	sqlDB, err := db.DB()
	if err != nil {
		return ""
	}
	row := sqlDB.QueryRow("PRAGMA database_list")
	var seq int
	var name, file string
	if err := row.Scan(&seq, &name, &file); err != nil {
		return ""
	}
	return file
}

// CleanupStaleLocks 清理数据库目录下过期的锁文件
func CleanupStaleLocks(dbPath string) {
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(dbPath), "*"+lockSuffix))
	for _, lockFile := range matches {
		if info, err := os.Stat(lockFile); err == nil && time.Since(info.ModTime()) > 2*lockStaleTimeout {
			logger.WithModule("database").Info("清理过期锁文件", zap.String("file", lockFile))
			os.Remove(lockFile)
		}
	}
}
