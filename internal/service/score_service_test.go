package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/speed-memory/internal/errors"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"github.com/wfunc/speed-memory/internal/repository"
)

// ScoreServiceTestSuite 成绩服务测试套件
type ScoreServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service ScoreService
}

func (suite *ScoreServiceTestSuite) SetupSuite() {
	suite.ctx = context.Background()
}

func (suite *ScoreServiceTestSuite) SetupTest() {
	// 每个测试使用独立的数据库文件
	dsn := filepath.Join(suite.T().TempDir(), "scores.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.db = db

	services := NewServices(db, DefaultConfig(), zap.NewNop())
	suite.service = services.Score
}

func (suite *ScoreServiceTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

// wonSession 完成一局 2x2 游戏：两次尝试，计时 elapsed
func (suite *ScoreServiceTestSuite) wonSession(id string, elapsed int) *game.Session {
	sched := game.NewManualScheduler()
	s, err := game.NewSession(2, []string{"A", "B"}, game.SessionOptions{
		ID:        id,
		Scheduler: sched,
		Shuffler:  game.NoShuffle,
	})
	suite.Require().NoError(err)

	_, err = s.SelectTile(0)
	suite.Require().NoError(err)
	sched.Advance(elapsed)
	for _, tile := range []game.TileID{1, 2, 3} {
		_, err = s.SelectTile(tile)
		suite.Require().NoError(err)
	}
	suite.Require().True(s.IsWon())
	return s
}

func (suite *ScoreServiceTestSuite) TestNormalizePlayerName() {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"  bob  ", "bob", false},
		{"maximilian", "maximili", false},
		{"张三丰的名字很长啊", "张三丰的名字很长", false},
		{"jo", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := suite.service.NormalizePlayerName(tt.in)
		if tt.wantErr {
			suite.True(errors.Is(err, errors.ErrInvalidPlayerName), tt.in)
			continue
		}
		suite.NoError(err)
		suite.Equal(tt.want, got)
	}
}

func (suite *ScoreServiceTestSuite) TestSubmitScore() {
	s := suite.wonSession("session-1", 1234)

	record, err := suite.service.SubmitScore(suite.ctx, s, "alexander")
	suite.Require().NoError(err)
	suite.Equal("alexande", record.PlayerName)
	suite.Equal(2, record.Attempts)
	suite.Equal("00:12:34", record.ElapsedTime)

	rows, err := suite.service.Leaderboard(suite.ctx, 2, repository.SortByScore, nil)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal("alexande", rows[0].Player)
	suite.Equal(2, rows[0].Score)
	suite.Equal("00:12:34", rows[0].Time)
	suite.Equal(int64(1234), rows[0].Hundredths)
	suite.Equal("session-1", rows[0].SessionID)
}

func (suite *ScoreServiceTestSuite) TestSubmitScore_NotWon() {
	s, err := game.NewSession(2, []string{"A", "B"}, game.SessionOptions{Scheduler: game.NewManualScheduler()})
	suite.Require().NoError(err)

	_, err = suite.service.SubmitScore(suite.ctx, s, "alice")
	suite.True(errors.Is(err, errors.ErrInvalidState))

	rows, err := suite.service.Leaderboard(suite.ctx, 2, repository.SortByScore, nil)
	suite.NoError(err)
	suite.Empty(rows)
}

func (suite *ScoreServiceTestSuite) TestSubmitScore_InvalidName() {
	s := suite.wonSession("session-2", 10)

	_, err := suite.service.SubmitScore(suite.ctx, s, "al")
	suite.True(errors.Is(err, errors.ErrInvalidPlayerName))
}

func (suite *ScoreServiceTestSuite) TestLeaderboard_SortByTime() {
	for i, elapsed := range []int{500, 200, 900} {
		s := suite.wonSession("session-"+string(rune('a'+i)), elapsed)
		_, err := suite.service.SubmitScore(suite.ctx, s, "player"+string(rune('a'+i)))
		suite.Require().NoError(err)
	}

	rows, err := suite.service.Leaderboard(suite.ctx, 2, repository.SortByTime, nil)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)
	suite.Equal("playerb", rows[0].Player)
	suite.Equal("playera", rows[1].Player)
	suite.Equal("playerc", rows[2].Player)
}

func TestScoreServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ScoreServiceTestSuite))
}

type brokenRepo struct {
	repository.HighScoreRepository
}

func (brokenRepo) Create(context.Context, int, *models.HighScore) error {
	return errors.New(errors.ErrDatabaseInsert, "database is locked")
}

func TestSubmitScore_StorageFailureLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewScoreService(brokenRepo{}, DefaultConfig(), zap.New(core))

	s, err := game.NewSession(2, []string{"A", "B"}, game.SessionOptions{
		Scheduler: game.NewManualScheduler(),
		Shuffler:  game.NoShuffle,
	})
	require.NoError(t, err)
	for _, id := range []game.TileID{0, 1, 2, 3} {
		_, err := s.SelectTile(id)
		require.NoError(t, err)
	}

	_, err = svc.SubmitScore(context.Background(), s, "alice")
	assert.True(t, errors.Is(err, errors.ErrDatabaseInsert))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
