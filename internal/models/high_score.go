package models

import (
	"fmt"
	"time"
)

// HighScore 高分记录，每种棋盘尺寸一张表
type HighScore struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Player     string    `gorm:"size:8;not null" json:"player"`
	Score      int       `gorm:"not null" json:"score"` // 尝试次数
	Time       string    `gorm:"size:12;not null" json:"time"` // mm:ss:hh
	Hundredths int64     `gorm:"not null" json:"hundredths"`
	SessionID  string    `gorm:"size:36" json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// HighScoreTable 棋盘尺寸对应的表名，如 memory_4x4
func HighScoreTable(size int) string {
	return fmt.Sprintf("memory_%dx%d", size, size)
}
