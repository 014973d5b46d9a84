package game

// TileID 牌的编号，在同一棋盘内唯一
type TileID int

// Tile 棋盘上的一张牌
//
// Face 是配对键，同一棋盘上恰好两张牌拥有相同的 Face。
// 判断是否为同一张牌使用 ID 而不是 Face。
type Tile struct {
	ID       TileID `json:"id"`
	Face     string `json:"face"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

// reveal 翻开
func (t *Tile) reveal() {
	t.Revealed = true
}

// hide 盖上，已配对的牌保持翻开
func (t *Tile) hide() {
	if !t.Matched {
		t.Revealed = false
	}
}

// match 标记为已配对，配对的牌一定是翻开的
func (t *Tile) match() {
	t.Revealed = true
	t.Matched = true
}
