package game

import (
	"math/rand/v2"

	"github.com/wfunc/speed-memory/internal/errors"
)

// Shuffler 随机排列来源，*rand.Rand 满足该接口
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// noShuffle 保持生成顺序
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

// NoShuffle 不打乱顺序的排列器，牌按 [f0, f0, f1, f1, ...] 排列
var NoShuffle Shuffler = noShuffle{}

// DefaultShuffler 使用全局随机源
type DefaultShuffler struct{}

// Shuffle 随机排列
func (DefaultShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Board 棋盘
type Board struct {
	Size  int
	Tiles []*Tile

	index map[TileID]*Tile
}

// ValidateBoardSize 棋盘边长必须为不小于2的偶数
func ValidateBoardSize(size int) error {
	if size < 2 || size%2 != 0 {
		return errors.Newf(errors.ErrInvalidBoardSize, "size=%d", size)
	}
	return nil
}

// PairsFor 指定边长需要的牌面数量
func PairsFor(size int) int {
	return size * size / 2
}

// GenerateBoard 生成棋盘
//
// 取 facePool 中前 size²/2 个不重复的牌面，每个牌面生成两张牌，
// 再用 shuffler 打乱顺序。选用哪些牌面由调用方通过 facePool 的顺序决定。
func GenerateBoard(size int, facePool []string, shuffler Shuffler) (*Board, error) {
	if err := ValidateBoardSize(size); err != nil {
		return nil, err
	}

	pairs := PairsFor(size)
	faces := distinctFaces(facePool, pairs)
	if len(faces) < pairs {
		return nil, errors.Newf(errors.ErrInsufficientFaces,
			"需要 %d 个不同牌面，提供 %d 个", pairs, len(faces))
	}

	tiles := make([]*Tile, 0, size*size)
	for _, face := range faces {
		for j := 0; j < 2; j++ {
			tiles = append(tiles, &Tile{ID: TileID(len(tiles)), Face: face})
		}
	}

	if shuffler == nil {
		shuffler = DefaultShuffler{}
	}
	shuffler.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})

	return newBoard(size, tiles), nil
}

func newBoard(size int, tiles []*Tile) *Board {
	b := &Board{
		Size:  size,
		Tiles: tiles,
		index: make(map[TileID]*Tile, len(tiles)),
	}
	for _, t := range tiles {
		b.index[t.ID] = t
	}
	return b
}

// distinctFaces 按顺序去重，最多取 limit 个
func distinctFaces(pool []string, limit int) []string {
	seen := make(map[string]struct{}, limit)
	faces := make([]string, 0, limit)
	for _, f := range pool {
		if len(faces) == limit {
			break
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		faces = append(faces, f)
	}
	return faces
}

// Tile 根据编号查找牌
func (b *Board) Tile(id TileID) (*Tile, bool) {
	t, ok := b.index[id]
	return t, ok
}

// At 根据位置查找牌
func (b *Board) At(pos int) (*Tile, bool) {
	if pos < 0 || pos >= len(b.Tiles) {
		return nil, false
	}
	return b.Tiles[pos], true
}

// AllMatched 是否所有牌都已配对
func (b *Board) AllMatched() bool {
	for _, t := range b.Tiles {
		if !t.Matched {
			return false
		}
	}
	return true
}

// MatchedPairs 已配对的对数
func (b *Board) MatchedPairs() int {
	n := 0
	for _, t := range b.Tiles {
		if t.Matched {
			n++
		}
	}
	return n / 2
}

// Snapshot 返回牌的副本，调用方修改不影响棋盘
func (b *Board) Snapshot() []Tile {
	out := make([]Tile, len(b.Tiles))
	for i, t := range b.Tiles {
		out[i] = *t
	}
	return out
}
