package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/wfunc/speed-memory/internal/config"
	"github.com/wfunc/speed-memory/internal/console"
	"github.com/wfunc/speed-memory/internal/database"
	"github.com/wfunc/speed-memory/internal/errors"
	"github.com/wfunc/speed-memory/internal/faces"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/logger"
	"github.com/wfunc/speed-memory/internal/service"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	dbConnectAttempts      = 3
	dbRetryDelay           = 500 * time.Millisecond
	defaultShutdownTimeout = 5 * time.Second
)

// App 应用实例
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	services *service.Services
	faces    *faces.Pool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		noScores    = flag.Bool("no-scores", false, "不保存成绩")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(exitCode(err))
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	app := NewApp(cfg)

	if err := app.Start(!*noScores); err != nil {
		logger.LogError(err, "启动失败")
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		logger.Cleanup()
		os.Exit(exitCode(err))
	}

	go app.WaitForSignal()

	err := app.Run()
	if shutdownErr := app.Shutdown(); shutdownErr != nil {
		logger.LogError(shutdownErr, "关闭失败")
	}

	if err != nil && err != context.Canceled {
		logger.LogError(err, "运行出错")
		logger.Cleanup()
		os.Exit(exitCode(err))
	}
}

// exitCode 严重错误（配置、数据库）返回 2，其他错误返回 1
func exitCode(err error) int {
	if errors.IsCritical(err) {
		return 2
	}
	return 1
}

// NewApp 创建应用实例
func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 初始化组件
func (a *App) Start(withScores bool) error {
	a.logger.Info("正在启动记忆翻牌游戏...",
		zap.String("version", Version),
		zap.String("mode", a.cfg.App.Mode),
		zap.Ints("board_sizes", a.cfg.Game.BoardSizes))

	pool, err := faces.Load(a.cfg.Game.FacesDir, a.cfg.Game.FaceCount)
	if err != nil {
		return err
	}
	if pool.Len() < game.PairsFor(a.cfg.Game.MaxBoardSize()) {
		return errors.Newf(errors.ErrInsufficientFaces,
			"%d 个牌面不足以支持 %dx%d 棋盘", pool.Len(), a.cfg.Game.MaxBoardSize(), a.cfg.Game.MaxBoardSize())
	}
	a.faces = pool
	a.logger.Info("牌面加载完成", zap.Int("count", pool.Len()), zap.String("dir", a.cfg.Game.FacesDir))

	if withScores {
		if err := a.initDatabase(); err != nil {
			return err
		}
		a.services = service.NewServices(database.DB, service.ConfigFromGame(&a.cfg.Game), logger.WithModule("service"))
	}

	// 监听配置变化
	if config.ConfigFile() != "" {
		config.Watch(a.reloadConfig, func(err error) {
			logger.LogError(err, "配置重载失败")
		})
	}

	a.logger.Info("启动完成")
	return nil
}

// initDatabase 初始化数据库
func (a *App) initDatabase() error {
	a.logger.Info("初始化数据库...", zap.String("driver", a.cfg.Database.Driver))

	// 连接失败可重试，配置错误直接返回
	var err error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		if err = database.Init(&a.cfg.Database); err == nil || !errors.IsRetryable(err) {
			break
		}
		a.logger.Warn("数据库连接失败，稍后重试", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < dbConnectAttempts {
			time.Sleep(dbRetryDelay)
		}
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if a.cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(database.DB, a.cfg.Game.BoardSizes); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseMigrate, "数据库迁移失败")
		}
	}

	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}
	return nil
}

// Run 运行终端界面，直到退出或收到信号
func (a *App) Run() error {
	opts := console.Options{
		In:        os.Stdin,
		Out:       os.Stdout,
		Faces:     a.faces,
		Game:      a.cfg.Game,
		Scheduler: game.NewTickerScheduler(),
		Shuffler:  game.DefaultShuffler{},
		Logger:    logger.WithModule("game"),
		OnEvent: func(e game.Event) {
			logger.LogGameEvent(string(e.Type), e.SessionID, map[string]interface{}{
				"status":   e.Status,
				"outcome":  e.Outcome.Kind,
				"attempts": e.Attempts,
			})
		},
	}
	if a.services != nil {
		opts.Scores = a.services.Score
	}

	a.wg.Add(1)
	defer a.wg.Done()
	return console.New(opts).Run(a.ctx)
}

// WaitForSignal 收到退出信号时取消运行
func (a *App) WaitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("收到退出信号", zap.String("signal", sig.String()))
		a.cancel()
	case <-a.ctx.Done():
	}
}

// Shutdown 关闭组件，等待终端退出最多 ShutdownTimeout
func (a *App) Shutdown() error {
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	timeout := a.cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	select {
	case <-done:
	case <-time.After(timeout):
		a.logger.Warn("关闭超时，强制退出", zap.Duration("timeout", timeout))
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	if a.services != nil {
		if err := database.Close(); err != nil {
			a.logger.Error("关闭数据库失败", zap.Error(err))
		}
	}
	a.logger.Info("已退出")
	return nil
}

// reloadConfig 配置热更新，只应用日志级别
func (a *App) reloadConfig(newCfg *config.Config) {
	logger.SetLevel(newCfg.Log.Level)
	a.logger.Info("配置已更新", zap.String("log_level", newCfg.Log.Level))
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Speed Memory\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Speed Memory 记忆翻牌游戏")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  speed-memory [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  SPEED_MEMORY_LOG_LEVEL          日志级别 (debug/info/warn/error)")
	fmt.Println("  SPEED_MEMORY_DATABASE_DSN       数据库连接")
	fmt.Println("  SPEED_MEMORY_GAME_FACES_DIR     牌面图片目录")
	fmt.Println("  SPEED_MEMORY_GAME_DEFAULT_SIZE  默认棋盘尺寸")
}
