package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/speed-memory/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4, 6, 8}, cfg.Game.BoardSizes)
	assert.Equal(t, 2, cfg.Game.DefaultSize)
	assert.Equal(t, 50, cfg.Game.FaceCount)
	assert.Equal(t, 10*time.Millisecond, cfg.Game.TickInterval)
	assert.Equal(t, 3, cfg.Game.PlayerName.Min)
	assert.Equal(t, 8, cfg.Game.PlayerName.Max)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file", cfg.Log.Output)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
game:
  board_sizes: [2, 4]
  default_size: 4
  tick_interval: 20ms
  faces_dir: ./memory_tiles
database:
  dsn: ./scores.db
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, cfg.Game.BoardSizes)
	assert.Equal(t, 4, cfg.Game.DefaultSize)
	assert.Equal(t, 20*time.Millisecond, cfg.Game.TickInterval)
	assert.Equal(t, "./memory_tiles", cfg.Game.FacesDir)
	assert.Equal(t, "./scores.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未覆盖的键保持默认值
	assert.Equal(t, 8, cfg.Game.PlayerName.Max)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SPEED_MEMORY_GAME_DEFAULT_SIZE", "6")
	t.Setenv("SPEED_MEMORY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Game.DefaultSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"奇数尺寸", "game:\n  board_sizes: [3]\n  default_size: 3\n"},
		{"默认尺寸不在列表中", "game:\n  board_sizes: [2, 4]\n  default_size: 8\n"},
		{"名称长度范围颠倒", "game:\n  player_name:\n    min: 8\n    max: 3\n"},
		{"计时间隔为零", "game:\n  tick_interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.True(t, errors.Is(err, errors.ErrConfigValidate), "%v", err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errors.ErrConfigLoad), "%v", err)
	assert.True(t, errors.IsCritical(err))
}

func TestGameConfig_Helpers(t *testing.T) {
	g := GameConfig{BoardSizes: []int{2, 8, 4}}
	assert.True(t, g.HasBoardSize(8))
	assert.False(t, g.HasBoardSize(6))
	assert.Equal(t, 8, g.MaxBoardSize())
}

func TestDecode_RejectsInvalidReload(t *testing.T) {
	vp := viper.New()
	setDefaults(vp)

	c, err := decode(vp)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Game.DefaultSize)

	vp.Set("game.default_size", 5)
	_, err = decode(vp)
	assert.True(t, errors.Is(err, errors.ErrConfigValidate))
}

func TestReportError(t *testing.T) {
	var got error
	reportError(func(err error) { got = err }, assert.AnError)
	assert.Equal(t, assert.AnError, got)

	buf := &bytes.Buffer{}
	old := stderr
	stderr = buf
	defer func() { stderr = old }()

	reportError(nil, assert.AnError)
	assert.Contains(t, buf.String(), "配置重载失败")
}
