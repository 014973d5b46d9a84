package game

// 会话提示信息
const (
	MsgPickTile    = "Pick a tile"
	MsgPickAnother = "Pick another one"
	MsgMatch       = "match"
	MsgNoMatch     = "no match"
	MsgPaused      = "Game paused. Click to continue."
	MsgResumed     = "Game is running again."
	MsgWonFormat   = "Congratulations! You won after %d tries."
)

// EventType 会话事件类型
type EventType string

const (
	EventSelected EventType = "selected" // 选牌被接受
	EventPaused   EventType = "paused"
	EventResumed  EventType = "resumed"
)

// Event 会话事件，宿主订阅后据此刷新界面
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Outcome   Outcome   `json:"outcome"`
	Status    Status    `json:"status"`
	Attempts  int       `json:"attempts"`
	Message   string    `json:"message"`
}
