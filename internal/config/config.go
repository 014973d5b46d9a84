package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/wfunc/speed-memory/internal/errors"
)

// Config 全局配置结构体
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Game     GameConfig     `mapstructure:"game"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// GameConfig 游戏配置
type GameConfig struct {
	BoardSizes   []int            `mapstructure:"board_sizes"`
	DefaultSize  int              `mapstructure:"default_size"`
	FacesDir     string           `mapstructure:"faces_dir"`
	FaceCount    int              `mapstructure:"face_count"`
	TickInterval time.Duration    `mapstructure:"tick_interval"`
	PlayerName   PlayerNameConfig `mapstructure:"player_name"`
}

// PlayerNameConfig 玩家名称长度限制
type PlayerNameConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// Validate 校验配置
func (c *Config) Validate() error {
	if len(c.Game.BoardSizes) == 0 {
		return fmt.Errorf("game.board_sizes 不能为空")
	}
	for _, size := range c.Game.BoardSizes {
		if size < 2 || size%2 != 0 {
			return fmt.Errorf("game.board_sizes 含无效尺寸: %d", size)
		}
	}
	if !c.Game.HasBoardSize(c.Game.DefaultSize) {
		return fmt.Errorf("game.default_size=%d 不在 board_sizes 中", c.Game.DefaultSize)
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("game.tick_interval 必须大于0")
	}
	if c.Game.PlayerName.Min < 1 || c.Game.PlayerName.Max < c.Game.PlayerName.Min {
		return fmt.Errorf("game.player_name 长度范围无效: %d-%d",
			c.Game.PlayerName.Min, c.Game.PlayerName.Max)
	}
	return nil
}

// HasBoardSize 判断是否支持该棋盘尺寸
func (g GameConfig) HasBoardSize(size int) bool {
	for _, s := range g.BoardSizes {
		if s == size {
			return true
		}
	}
	return false
}

// MaxBoardSize 最大棋盘尺寸
func (g GameConfig) MaxBoardSize() int {
	max := 0
	for _, s := range g.BoardSizes {
		if s > max {
			max = s
		}
	}
	return max
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper

	stderr io.Writer = os.Stderr
)

// Init 初始化全局配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		var loaded *Config
		v, loaded, err = load(configPath)
		if err != nil {
			return
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})
	return err
}

// Load 读取并校验配置，不影响全局实例
func Load(configPath string) (*Config, error) {
	_, c, err := load(configPath)
	return c, err
}

func load(configPath string) (*viper.Viper, *Config, error) {
	vp := viper.New()

	if configPath != "" {
		vp.SetConfigFile(configPath)
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("yaml")
		vp.AddConfigPath("./config")
		vp.AddConfigPath(".")
	}

	vp.SetEnvPrefix("SPEED_MEMORY")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	setDefaults(vp)

	// 配置文件不存在时使用默认配置
	if err := vp.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, errors.Wrap(err, errors.ErrConfigLoad, "读取配置文件失败")
		}
	}

	c, err := decode(vp)
	if err != nil {
		return nil, nil, err
	}
	return vp, c, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "speed-memory")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.shutdown_timeout", "5s")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/save_data.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// 日志默认只写文件，终端留给游戏界面
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "file")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "speed-memory.log")
	v.SetDefault("log.file.max_size", 20)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)

	// 游戏默认配置
	v.SetDefault("game.board_sizes", []int{2, 4, 6, 8})
	v.SetDefault("game.default_size", 2)
	v.SetDefault("game.faces_dir", "")
	v.SetDefault("game.face_count", 50)
	v.SetDefault("game.tick_interval", "10ms")
	v.SetDefault("game.player_name.min", 3)
	v.SetDefault("game.player_name.max", 8)
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
//
// 重载失败时保留旧配置并调用 onError，onError 为空时写到 stderr。
func Watch(callback func(*Config), onError func(error)) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg, err := decode(v)
		if err != nil {
			reportError(onError, err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}
	})
	v.WatchConfig()
}

// decode 解析并校验 viper 中的配置
func decode(vp *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValidate)
	}
	return c, nil
}

func reportError(onError func(error), err error) {
	if onError != nil {
		onError(err)
		return
	}
	fmt.Fprintf(stderr, "配置重载失败: %v\n", err)
}

// ConfigFile 当前使用的配置文件
func ConfigFile() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
