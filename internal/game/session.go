package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/speed-memory/internal/errors"
	"go.uber.org/zap"
)

// Status 会话状态
type Status string

const (
	StatusAwaitingFirstPick  Status = "awaiting_first_pick"
	StatusAwaitingSecondPick Status = "awaiting_second_pick"
	StatusPaused             Status = "paused"
	StatusWon                Status = "won"
)

// OutcomeKind 选牌结果
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeMismatch OutcomeKind = "mismatch"
	OutcomeMatched  OutcomeKind = "matched"
	OutcomeWon      OutcomeKind = "won"
	OutcomeRejected OutcomeKind = "rejected"
)

// RejectReason 选牌被忽略的原因
type RejectReason string

const (
	RejectPaused          RejectReason = "paused"
	RejectWon             RejectReason = "won"
	RejectMatched         RejectReason = "already_matched"
	RejectAlreadySelected RejectReason = "already_selected"
)

// Outcome 一次选牌的结果
type Outcome struct {
	Kind     OutcomeKind  `json:"kind"`
	Reason   RejectReason `json:"reason,omitempty"`
	TileID   TileID       `json:"tile_id"`
	Attempts int          `json:"attempts"`
	Message  string       `json:"message"`
}

// SessionOptions 会话选项，零值可用
type SessionOptions struct {
	ID           string
	Scheduler    Scheduler
	TickInterval time.Duration
	Shuffler     Shuffler
	Logger       *zap.Logger
}

// Session 一局游戏的状态机
//
// 状态流转：AwaitingFirstPick → AwaitingSecondPick → AwaitingFirstPick（未配对）
// 或 → Won（最后一对配对成功）。Paused 可从两种等待状态进入，恢复时回到原状态。
// Won 为终态。
type Session struct {
	mu sync.Mutex

	id        string
	board     *Board
	clock     *SessionClock
	logger    *zap.Logger
	createdAt time.Time

	status       Status
	resumeTo     Status
	attempts     int
	selection    []*Tile
	clockStarted bool
	message      string

	onEvent func(Event)
}

// NewSession 生成棋盘并创建会话
func NewSession(size int, facePool []string, opts SessionOptions) (*Session, error) {
	board, err := GenerateBoard(size, facePool, opts.Shuffler)
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:        id,
		board:     board,
		clock:     NewSessionClock(opts.Scheduler, opts.TickInterval),
		logger:    logger.With(zap.String("session_id", id)),
		createdAt: time.Now(),
		status:    StatusAwaitingFirstPick,
		selection: make([]*Tile, 0, 2),
		message:   MsgPickTile,
	}

	s.logger.Info("创建游戏会话",
		zap.Int("board_size", size),
		zap.Int("pairs", PairsFor(size)))

	return s, nil
}

// OnEvent 订阅会话事件，回调在会话锁之外执行
func (s *Session) OnEvent(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// SelectTile 处理一次选牌
//
// 不存在的牌返回 ErrUnknownTile；暂停、已获胜、已配对或重复选择同一张牌
// 返回 OutcomeRejected 且不改变状态。
func (s *Session) SelectTile(id TileID) (Outcome, error) {
	s.mu.Lock()
	out, err := s.selectLocked(id)
	event := s.eventLocked(EventSelected, out)
	handler := s.onEvent
	s.mu.Unlock()

	if err != nil {
		return out, err
	}
	if out.Kind != OutcomeRejected {
		s.emit(handler, event)
	}
	return out, nil
}

func (s *Session) selectLocked(id TileID) (Outcome, error) {
	tile, ok := s.board.Tile(id)
	if !ok {
		return Outcome{}, errors.Newf(errors.ErrUnknownTile, "tile_id=%d", id)
	}

	switch {
	case s.status == StatusPaused:
		return s.rejected(id, RejectPaused), nil
	case s.status == StatusWon:
		return s.rejected(id, RejectWon), nil
	case tile.Matched:
		return s.rejected(id, RejectMatched), nil
	case len(s.selection) == 1 && s.selection[0].ID == id:
		return s.rejected(id, RejectAlreadySelected), nil
	}

	if !s.clockStarted {
		s.clockStarted = true
		s.clock.Start()
	}

	// 上一对未配对的牌仍翻开着，先盖上，本次作为下一轮的第一张
	if len(s.selection) == 2 {
		for _, t := range s.selection {
			t.hide()
		}
		s.selection = s.selection[:0]
	}

	tile.reveal()
	s.selection = append(s.selection, tile)

	if len(s.selection) == 1 {
		s.status = StatusAwaitingSecondPick
		s.message = MsgPickAnother
		return s.outcome(OutcomeAccepted, id), nil
	}

	return s.compareLocked(id), nil
}

// compareLocked 比较已选的两张牌
func (s *Session) compareLocked(id TileID) Outcome {
	s.attempts++
	first, second := s.selection[0], s.selection[1]

	if first.Face != second.Face {
		s.status = StatusAwaitingFirstPick
		s.message = MsgNoMatch
		s.logger.Debug("未配对",
			zap.Int("first", int(first.ID)),
			zap.Int("second", int(second.ID)),
			zap.Int("attempts", s.attempts))
		return s.outcome(OutcomeMismatch, id)
	}

	first.match()
	second.match()
	s.selection = s.selection[:0]

	if !s.board.AllMatched() {
		s.status = StatusAwaitingFirstPick
		s.message = MsgMatch
		s.logger.Debug("配对成功",
			zap.String("face", first.Face),
			zap.Int("attempts", s.attempts))
		return s.outcome(OutcomeMatched, id)
	}

	s.clock.Stop()
	s.status = StatusWon
	s.message = fmt.Sprintf(MsgWonFormat, s.attempts)
	s.logger.Info("游戏获胜",
		zap.Int("attempts", s.attempts),
		zap.String("time", s.clock.Display()),
		zap.Duration("wall", time.Since(s.createdAt)))
	return s.outcome(OutcomeWon, id)
}

func (s *Session) outcome(kind OutcomeKind, id TileID) Outcome {
	return Outcome{Kind: kind, TileID: id, Attempts: s.attempts, Message: s.message}
}

func (s *Session) rejected(id TileID, reason RejectReason) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason, TileID: id, Attempts: s.attempts, Message: s.message}
}

// Pause 暂停并停止计时，已暂停或已获胜时无操作
func (s *Session) Pause() {
	s.mu.Lock()
	if s.status == StatusPaused || s.status == StatusWon {
		s.mu.Unlock()
		return
	}

	s.resumeTo = s.status
	s.status = StatusPaused
	s.clock.Stop()
	s.message = MsgPaused
	event := s.eventLocked(EventPaused, Outcome{})
	handler := s.onEvent
	s.mu.Unlock()

	s.logger.Debug("游戏暂停", zap.String("elapsed", s.clock.Display()))
	s.emit(handler, event)
}

// Resume 恢复到暂停前的状态
//
// 未暂停时无操作；已获胜返回 ErrInvalidState。
// 尚未选过牌时恢复不会启动计时。
func (s *Session) Resume() error {
	s.mu.Lock()
	if s.status == StatusWon {
		s.mu.Unlock()
		return errors.New(errors.ErrInvalidState, "游戏已结束，无法继续")
	}
	if s.status != StatusPaused {
		s.mu.Unlock()
		return nil
	}

	s.status = s.resumeTo
	if s.clockStarted {
		s.clock.Start()
	}
	s.message = MsgResumed
	event := s.eventLocked(EventResumed, Outcome{})
	handler := s.onEvent
	s.mu.Unlock()

	s.logger.Debug("游戏继续", zap.String("status", string(event.Status)))
	s.emit(handler, event)
	return nil
}

// Close 放弃会话，停止计时
func (s *Session) Close() {
	s.clock.Stop()
}

// IsWon 所有牌都已配对
func (s *Session) IsWon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.AllMatched()
}

// BuildScoreRecord 生成成绩，只能在获胜后调用
func (s *Session) BuildScoreRecord(playerName string) (ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWon {
		return ScoreRecord{}, errors.Newf(errors.ErrInvalidState, "status=%s", s.status)
	}

	return ScoreRecord{
		SessionID:         s.id,
		BoardSize:         s.board.Size,
		PlayerName:        playerName,
		Attempts:          s.attempts,
		ElapsedTime:       s.clock.Display(),
		ElapsedHundredths: s.clock.Elapsed(),
	}, nil
}

func (s *Session) eventLocked(t EventType, out Outcome) Event {
	return Event{
		Type:      t,
		SessionID: s.id,
		Outcome:   out,
		Status:    s.status,
		Attempts:  s.attempts,
		Message:   s.message,
	}
}

func (s *Session) emit(handler func(Event), event Event) {
	if handler != nil {
		handler(event)
	}
}

// ID 会话编号
func (s *Session) ID() string {
	return s.id
}

// Size 棋盘边长
func (s *Session) Size() int {
	return s.board.Size
}

// Status 当前状态
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Paused 是否暂停中
func (s *Session) Paused() bool {
	return s.Status() == StatusPaused
}

// Message 当前提示信息
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Attempts 已完成的比较次数
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Selection 当前翻开但未配对的牌
func (s *Session) Selection() []TileID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]TileID, len(s.selection))
	for i, t := range s.selection {
		ids[i] = t.ID
	}
	return ids
}

// Tiles 按棋盘位置返回牌的副本
func (s *Session) Tiles() []Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Snapshot()
}

// TileAt 按位置返回牌的副本
func (s *Session) TileAt(pos int) (Tile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.board.At(pos)
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// MatchedPairs 已配对的对数
func (s *Session) MatchedPairs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.MatchedPairs()
}

// Elapsed 已计时的百分之一秒数
func (s *Session) Elapsed() int64 {
	return s.clock.Elapsed()
}

// ClockDisplay 计时显示 mm:ss:hh
func (s *Session) ClockDisplay() string {
	return s.clock.Display()
}

// ClockRunning 计时是否在运行
func (s *Session) ClockRunning() bool {
	return s.clock.Running()
}
