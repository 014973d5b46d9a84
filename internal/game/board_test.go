package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/speed-memory/internal/errors"
)

func facePool(n int) []string {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf("face-%02d", i+1)
	}
	return pool
}

func TestGenerateBoard_PairsEachFaceTwice(t *testing.T) {
	for _, size := range []int{2, 4, 6, 8} {
		t.Run(fmt.Sprintf("%dx%d", size, size), func(t *testing.T) {
			board, err := GenerateBoard(size, facePool(50), rand.New(rand.NewPCG(1, uint64(size))))
			require.NoError(t, err)
			require.Len(t, board.Tiles, size*size)

			counts := make(map[string]int)
			ids := make(map[TileID]bool)
			for _, tile := range board.Tiles {
				counts[tile.Face]++
				assert.False(t, ids[tile.ID], "编号重复: %d", tile.ID)
				ids[tile.ID] = true
				assert.False(t, tile.Revealed)
				assert.False(t, tile.Matched)
			}
			assert.Len(t, counts, size*size/2)
			for face, n := range counts {
				assert.Equal(t, 2, n, "牌面 %s", face)
			}
		})
	}
}

func TestGenerateBoard_InvalidSize(t *testing.T) {
	for _, size := range []int{-2, 0, 1, 3, 5} {
		_, err := GenerateBoard(size, facePool(50), NoShuffle)
		assert.True(t, errors.Is(err, errors.ErrInvalidBoardSize), "size=%d", size)
	}
}

func TestGenerateBoard_InsufficientFaces(t *testing.T) {
	_, err := GenerateBoard(4, facePool(7), NoShuffle)
	assert.True(t, errors.Is(err, errors.ErrInsufficientFaces))

	// 重复的牌面只算一个
	pool := append(facePool(7), "face-01", "face-02")
	_, err = GenerateBoard(4, pool, NoShuffle)
	assert.True(t, errors.Is(err, errors.ErrInsufficientFaces))

	_, err = GenerateBoard(4, facePool(8), NoShuffle)
	assert.NoError(t, err)
}

func TestGenerateBoard_NoShuffleKeepsOrder(t *testing.T) {
	board, err := GenerateBoard(2, []string{"A", "A", "B", "C"}, NoShuffle)
	require.NoError(t, err)

	faces := make([]string, 0, 4)
	for i, tile := range board.Tiles {
		assert.Equal(t, TileID(i), tile.ID)
		faces = append(faces, tile.Face)
	}
	assert.Equal(t, []string{"A", "A", "B", "B"}, faces)
}

func TestGenerateBoard_ShuffleIsDeterministicPerSeed(t *testing.T) {
	a, err := GenerateBoard(6, facePool(50), rand.New(rand.NewPCG(42, 7)))
	require.NoError(t, err)
	b, err := GenerateBoard(6, facePool(50), rand.New(rand.NewPCG(42, 7)))
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestBoard_Lookup(t *testing.T) {
	board, err := GenerateBoard(2, []string{"A", "B"}, NoShuffle)
	require.NoError(t, err)

	tile, ok := board.Tile(3)
	require.True(t, ok)
	assert.Equal(t, "B", tile.Face)

	_, ok = board.Tile(4)
	assert.False(t, ok)
	_, ok = board.At(-1)
	assert.False(t, ok)

	snap := board.Snapshot()
	snap[0].Revealed = true
	assert.False(t, board.Tiles[0].Revealed, "快照不应影响棋盘")
}

func TestTile_HideKeepsMatched(t *testing.T) {
	tile := &Tile{ID: 1, Face: "A"}
	tile.match()
	tile.hide()
	assert.True(t, tile.Revealed)
	assert.True(t, tile.Matched)
}
