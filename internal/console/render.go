package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wfunc/speed-memory/internal/faces"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"github.com/wfunc/speed-memory/internal/repository"
)

// renderBoard 打印状态行、棋盘与提示
//
// 未翻开的牌显示位置编号，翻开的显示牌面，已配对的加方括号。暂停时隐藏棋盘。
func renderBoard(w io.Writer, s *game.Session, pool *faces.Pool) {
	size := s.Size()
	fmt.Fprintf(w, "%dx%d  Tries: %d  Time: %s  Pairs: %d/%d\n",
		size, size, s.Attempts(), s.ClockDisplay(), s.MatchedPairs(), game.PairsFor(size))

	if s.Paused() {
		fmt.Fprintf(w, "%s\n", s.Message())
		return
	}

	tiles := s.Tiles()
	cells := make([]string, len(tiles))
	width := len(strconv.Itoa(len(tiles)))
	for i, t := range tiles {
		cells[i] = cell(i+1, t, pool)
		if n := len([]rune(cells[i])); n > width {
			width = n
		}
	}

	for row := 0; row < size; row++ {
		var b strings.Builder
		for col := 0; col < size; col++ {
			if col > 0 {
				b.WriteString(" ")
			}
			b.WriteString(pad(cells[row*size+col], width))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintf(w, "%s\n", s.Message())
}

func cell(pos int, t game.Tile, pool *faces.Pool) string {
	switch {
	case t.Matched:
		return "[" + pool.Label(t.Face) + "]"
	case t.Revealed:
		return pool.Label(t.Face)
	default:
		return strconv.Itoa(pos)
	}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// renderScores 打印排行榜
func renderScores(w io.Writer, size int, column repository.SortColumn, rows []*models.HighScore) {
	fmt.Fprintf(w, "High scores %dx%d (by %s)\n", size, size, column)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  no scores yet")
		return
	}
	fmt.Fprintf(w, "  %-3s %-8s %5s %10s\n", "#", "Player", "Tries", "Time")
	for i, r := range rows {
		fmt.Fprintf(w, "  %-3d %-8s %5d %10s\n", i+1, r.Player, r.Score, r.Time)
	}
}
