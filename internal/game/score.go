package game

// ScoreRecord 一局获胜后的成绩，构建后不再修改
type ScoreRecord struct {
	SessionID         string `json:"session_id"`
	BoardSize         int    `json:"board_size"`
	PlayerName        string `json:"player_name"`
	Attempts          int    `json:"attempts"`
	ElapsedTime       string `json:"elapsed_time"` // mm:ss:hh
	ElapsedHundredths int64  `json:"elapsed_hundredths"`
}
