// Package console 终端界面：读取命令驱动游戏会话并渲染棋盘。
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wfunc/speed-memory/internal/config"
	"github.com/wfunc/speed-memory/internal/errors"
	"github.com/wfunc/speed-memory/internal/faces"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/repository"
	"github.com/wfunc/speed-memory/internal/service"
	"go.uber.org/zap"
)

// Options 终端选项
type Options struct {
	In        io.Reader
	Out       io.Writer
	Faces     *faces.Pool
	Game      config.GameConfig
	Scores    service.ScoreService // 为空时不保存成绩
	Scheduler game.Scheduler
	Shuffler  game.Shuffler
	Logger    *zap.Logger
	OnEvent   func(game.Event)
}

// Console 终端宿主
type Console struct {
	in        io.Reader
	out       io.Writer
	faces     *faces.Pool
	game      config.GameConfig
	scores    service.ScoreService
	scheduler game.Scheduler
	shuffler  game.Shuffler
	logger    *zap.Logger
	onEvent   func(game.Event)

	session   *game.Session
	submitted bool
}

// New 创建终端
func New(opts Options) *Console {
	c := &Console{
		in:        opts.In,
		out:       opts.Out,
		faces:     opts.Faces,
		game:      opts.Game,
		scores:    opts.Scores,
		scheduler: opts.Scheduler,
		shuffler:  opts.Shuffler,
		logger:    opts.Logger,
		onEvent:   opts.OnEvent,
	}
	if c.faces == nil {
		count := c.game.FaceCount
		if count <= 0 {
			count = 50
		}
		c.faces = faces.Builtin(count)
	}
	if c.scheduler == nil {
		c.scheduler = game.NewTickerScheduler()
	}
	if c.shuffler == nil {
		c.shuffler = game.DefaultShuffler{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if len(c.game.BoardSizes) == 0 {
		c.game.BoardSizes = []int{2, 4, 6, 8}
	}
	if c.game.DefaultSize == 0 {
		c.game.DefaultSize = c.game.BoardSizes[0]
	}
	return c
}

// Run 读取命令直到 quit、输入结束或 ctx 取消
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	defer c.closeSession()

	c.printf("Speed Memory\n")
	c.printMenu()

	for {
		c.printf("> ")
		select {
		case <-ctx.Done():
			c.printf("\n")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// Execute 执行一条命令，返回是否退出
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "new", "n":
		c.cmdNew(args)
	case "pick", "p":
		c.cmdPick(args)
	case "pause":
		c.cmdPause()
	case "resume", "r":
		c.cmdResume()
	case "board", "b":
		c.renderSession()
	case "name":
		c.cmdName(ctx, args)
	case "scores", "s":
		c.cmdScores(ctx, args)
	case "menu", "m":
		c.printMenu()
	case "help", "h", "?":
		c.printHelp()
	case "quit", "q", "exit":
		c.printf("Bye.\n")
		return true
	default:
		c.printf("Unknown command %q, type help.\n", cmd)
	}
	return false
}

func (c *Console) cmdNew(args []string) {
	size := c.game.DefaultSize
	if len(args) > 0 {
		n, err := parseSize(args[0])
		if err != nil {
			c.printf("Invalid board size %q.\n", args[0])
			return
		}
		size = n
	}
	if !c.game.HasBoardSize(size) {
		c.printf("Board size %dx%d is not offered. Sizes: %s\n", size, size, c.sizeList())
		return
	}

	facePool := c.faces.Shuffled(c.shuffler.Shuffle)
	session, err := game.NewSession(size, facePool, game.SessionOptions{
		Scheduler:    c.scheduler,
		TickInterval: c.game.TickInterval,
		Shuffler:     c.shuffler,
		Logger:       c.logger,
	})
	if err != nil {
		c.logger.Warn("创建游戏失败", zap.Int("board_size", size), zap.Error(err))
		c.printf("Cannot start game: %v\n", err)
		return
	}

	c.closeSession()
	if c.onEvent != nil {
		session.OnEvent(c.onEvent)
	}
	c.session = session
	c.submitted = false
	c.renderSession()
}

func (c *Console) cmdPick(args []string) {
	if c.session == nil {
		c.printf("No game running, type new.\n")
		return
	}
	if len(args) == 0 {
		c.printf("Usage: pick <position>\n")
		return
	}
	pos, err := strconv.Atoi(args[0])
	if err != nil {
		c.printf("Invalid position %q.\n", args[0])
		return
	}

	tile, ok := c.session.TileAt(pos - 1)
	if !ok {
		c.printf("No tile at position %d.\n", pos)
		return
	}

	out, err := c.session.SelectTile(tile.ID)
	if err != nil {
		c.printf("Cannot pick: %v\n", err)
		return
	}

	switch out.Kind {
	case game.OutcomeRejected:
		c.printf("%s\n", rejectText(out.Reason))
		if out.Reason != game.RejectPaused {
			return
		}
	case game.OutcomeWon:
		c.renderSession()
		if c.scores != nil {
			c.printf("Save your score with: name <player>\n")
		}
		return
	}
	c.renderSession()
}

func (c *Console) cmdPause() {
	if c.session == nil {
		c.printf("No game running.\n")
		return
	}
	c.session.Pause()
	c.renderSession()
}

func (c *Console) cmdResume() {
	if c.session == nil {
		c.printf("No game running.\n")
		return
	}
	if err := c.session.Resume(); err != nil {
		c.printf("Cannot resume: the game is over.\n")
		return
	}
	c.renderSession()
}

func (c *Console) cmdName(ctx context.Context, args []string) {
	if c.session == nil || !c.session.IsWon() {
		c.printf("Names are entered after winning a game.\n")
		return
	}
	if c.scores == nil {
		c.printf("High scores are disabled.\n")
		return
	}
	if c.submitted {
		c.printf("Score already saved.\n")
		return
	}
	if len(args) == 0 {
		c.printf("Usage: name <player>\n")
		return
	}

	record, err := c.scores.SubmitScore(ctx, c.session, strings.Join(args, " "))
	switch {
	case errors.Is(err, errors.ErrInvalidPlayerName):
		c.printf("Name too short, try again.\n")
		return
	case err != nil:
		c.printf("Save failed.\n")
		return
	}

	c.submitted = true
	c.printf("Saved %s: %d tries in %s.\n", record.PlayerName, record.Attempts, record.ElapsedTime)
	c.showScores(ctx, record.BoardSize, repository.SortByScore)
}

func (c *Console) cmdScores(ctx context.Context, args []string) {
	if c.scores == nil {
		c.printf("High scores are disabled.\n")
		return
	}

	size := c.game.DefaultSize
	if c.session != nil {
		size = c.session.Size()
	}
	column := repository.SortByScore

	for _, arg := range args {
		if n, err := parseSize(arg); err == nil {
			size = n
			continue
		}
		col, err := repository.ParseSortColumn(arg)
		if err != nil {
			c.printf("Sort by score or time.\n")
			return
		}
		column = col
	}

	if !c.game.HasBoardSize(size) {
		c.printf("Board size %dx%d is not offered. Sizes: %s\n", size, size, c.sizeList())
		return
	}
	c.showScores(ctx, size, column)
}

func (c *Console) showScores(ctx context.Context, size int, column repository.SortColumn) {
	rows, err := c.scores.Leaderboard(ctx, size, column, repository.NewPagination(1, 10))
	if err != nil {
		c.printf("Could not load high scores.\n")
		return
	}
	renderScores(c.out, size, column, rows)
}

func (c *Console) closeSession() {
	if c.session != nil {
		c.session.Close()
	}
}

func (c *Console) renderSession() {
	if c.session == nil {
		c.printf("No game running, type new.\n")
		return
	}
	renderBoard(c.out, c.session, c.faces)
}

func (c *Console) printMenu() {
	c.printf("Board sizes: %s (default %dx%d)\n", c.sizeList(), c.game.DefaultSize, c.game.DefaultSize)
	c.printf("Type new <size> to start, help for commands.\n")
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, helpText)
}

func (c *Console) sizeList() string {
	parts := make([]string, len(c.game.BoardSizes))
	for i, n := range c.game.BoardSizes {
		parts[i] = fmt.Sprintf("%dx%d", n, n)
	}
	return strings.Join(parts, ", ")
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// parseSize 接受 4 或 4x4
func parseSize(s string) (int, error) {
	s = strings.ToLower(s)
	if a, b, ok := strings.Cut(s, "x"); ok {
		if a != b {
			return 0, fmt.Errorf("not square: %s", s)
		}
		s = a
	}
	return strconv.Atoi(s)
}

func rejectText(reason game.RejectReason) string {
	switch reason {
	case game.RejectPaused:
		return "Game is paused, type resume."
	case game.RejectWon:
		return "Game is over, type new to play again."
	case game.RejectMatched:
		return "That tile is already matched."
	case game.RejectAlreadySelected:
		return "That tile is already selected."
	default:
		return "Ignored."
	}
}

const helpText = `Commands:
  new [size]             start a game (e.g. new 4 or new 4x4)
  pick <position>        turn over the tile at a position
  pause / resume         stop or continue the clock
  board                  show the board again
  name <player>          save your score after winning
  scores [size] [score|time]
                         show high scores
  menu                   show board sizes
  help                   show this help
  quit                   leave
`
