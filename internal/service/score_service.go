package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/wfunc/speed-memory/internal/errors"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"github.com/wfunc/speed-memory/internal/repository"
	"go.uber.org/zap"
)

// scoreService 成绩服务实现
type scoreService struct {
	repo   repository.HighScoreRepository
	cfg    *Config
	logger *zap.Logger
}

// NewScoreService 创建成绩服务
func NewScoreService(repo repository.HighScoreRepository, cfg *Config, log *zap.Logger) ScoreService {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &scoreService{
		repo:   repo,
		cfg:    cfg,
		logger: log,
	}
}

// NormalizePlayerName 整理玩家名称
func (s *scoreService) NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > s.cfg.NameMax {
		name = string(runes[:s.cfg.NameMax])
	}
	if utf8.RuneCountInString(name) < s.cfg.NameMin {
		return "", errors.Newf(errors.ErrInvalidPlayerName, "名称至少 %d 个字符", s.cfg.NameMin)
	}
	return name, nil
}

// SubmitScore 保存成绩
func (s *scoreService) SubmitScore(ctx context.Context, session *game.Session, playerName string) (game.ScoreRecord, error) {
	name, err := s.NormalizePlayerName(playerName)
	if err != nil {
		return game.ScoreRecord{}, err
	}

	record, err := session.BuildScoreRecord(name)
	if err != nil {
		return game.ScoreRecord{}, err
	}

	row := &models.HighScore{
		Player:     record.PlayerName,
		Score:      record.Attempts,
		Time:       record.ElapsedTime,
		Hundredths: record.ElapsedHundredths,
		SessionID:  record.SessionID,
	}
	if err := s.repo.Create(ctx, record.BoardSize, row); err != nil {
		s.logger.Error("保存成绩失败",
			zap.String("session_id", record.SessionID),
			zap.Int("board_size", record.BoardSize),
			zap.Error(err))
		return record, errors.Wrap(err, errors.ErrDatabaseInsert)
	}

	s.logger.Info("成绩已保存",
		zap.String("session_id", record.SessionID),
		zap.String("player", record.PlayerName),
		zap.Int("board_size", record.BoardSize),
		zap.Int("attempts", record.Attempts),
		zap.String("time", record.ElapsedTime))
	return record, nil
}

// Leaderboard 查询排行榜
func (s *scoreService) Leaderboard(ctx context.Context, size int, column repository.SortColumn, p *repository.Pagination) ([]*models.HighScore, error) {
	rows, err := s.repo.ListBySize(ctx, size, column, p)
	if err != nil {
		s.logger.Warn("查询排行榜失败", zap.Int("board_size", size), zap.Error(err))
		return nil, err
	}
	return rows, nil
}
