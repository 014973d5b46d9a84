package service

import (
	"context"

	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"github.com/wfunc/speed-memory/internal/repository"
)

// ScoreService 成绩服务接口
type ScoreService interface {
	// NormalizePlayerName 整理玩家名称：去空白、截断到上限，过短返回错误
	NormalizePlayerName(name string) (string, error)
	// SubmitScore 保存已获胜会话的成绩
	SubmitScore(ctx context.Context, session *game.Session, playerName string) (game.ScoreRecord, error)
	// Leaderboard 查询某尺寸的排行榜
	Leaderboard(ctx context.Context, size int, column repository.SortColumn, p *repository.Pagination) ([]*models.HighScore, error)
}
