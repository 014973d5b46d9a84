package service

import (
	"github.com/wfunc/speed-memory/internal/config"
	"github.com/wfunc/speed-memory/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	NameMin int
	NameMax int
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		NameMin: 3,
		NameMax: 8,
	}
}

// ConfigFromGame 从游戏配置生成服务配置
func ConfigFromGame(g *config.GameConfig) *Config {
	cfg := DefaultConfig()
	if g == nil {
		return cfg
	}
	if g.PlayerName.Min > 0 {
		cfg.NameMin = g.PlayerName.Min
	}
	if g.PlayerName.Max > 0 {
		cfg.NameMax = g.PlayerName.Max
	}
	return cfg
}

// Services 服务集合
type Services struct {
	Score ScoreService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *Config, log *zap.Logger) *Services {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	highScoreRepo := repository.NewHighScoreRepository(db)

	return &Services{
		Score: NewScoreService(highScoreRepo, cfg, log),
	}
}
