// Package faces 提供牌面标识池。
//
// 牌面对游戏核心是不透明的字符串，这里只负责从素材目录收集文件名，
// 或在未配置素材时生成内置标识。
package faces

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wfunc/speed-memory/internal/errors"
)

// 支持的图片扩展名
var imageExts = map[string]bool{
	".png":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
}

// LabelWidth 终端显示牌面时的最大宽度
const LabelWidth = 8

// Pool 牌面标识池
type Pool struct {
	faces  []string
	labels map[string]string
}

func newPool(faces []string) *Pool {
	return &Pool{faces: faces, labels: uniqueLabels(faces, LabelWidth)}
}

// Builtin 生成 face-01..face-NN 形式的内置标识
func Builtin(count int) *Pool {
	faces := make([]string, count)
	for i := range faces {
		faces[i] = fmt.Sprintf("face-%02d", i+1)
	}
	return newPool(faces)
}

// LoadDir 读取目录中的图片文件名作为牌面标识，按名称排序
func LoadDir(dir string) (*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAssetLoad, "读取牌面目录 %s", dir)
	}

	var faces []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		faces = append(faces, entry.Name())
	}
	sort.Strings(faces)

	if len(faces) == 0 {
		return nil, errors.Newf(errors.ErrAssetLoad, "目录 %s 中没有可用的牌面图片", dir)
	}
	return newPool(faces), nil
}

// Load 配置了目录时从目录读取，否则使用内置标识
func Load(dir string, builtinCount int) (*Pool, error) {
	if dir == "" {
		return Builtin(builtinCount), nil
	}
	return LoadDir(dir)
}

// Len 牌面数量
func (p *Pool) Len() int {
	return len(p.faces)
}

// Faces 返回副本
func (p *Pool) Faces() []string {
	out := make([]string, len(p.faces))
	copy(out, p.faces)
	return out
}

// Shuffled 返回打乱后的副本，每局使用不同的牌面组合
func (p *Pool) Shuffled(shuffle func(n int, swap func(i, j int))) []string {
	out := p.Faces()
	shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Label 池内唯一的短显示名，不在池中的牌面退回到 ShortLabel
func (p *Pool) Label(face string) string {
	if label, ok := p.labels[face]; ok {
		return label
	}
	return ShortLabel(face, LabelWidth)
}

// uniqueLabels 截断后重名的牌面改用 "前缀~序号"，序号按池内顺序分配
func uniqueLabels(faces []string, width int) map[string]string {
	labels := make(map[string]string, len(faces))
	count := make(map[string]int, len(faces))
	for _, f := range faces {
		count[ShortLabel(f, width)]++
	}

	used := make(map[string]bool, len(faces))
	var collided []string
	for _, f := range faces {
		short := ShortLabel(f, width)
		if count[short] == 1 {
			labels[f] = short
			used[short] = true
		} else {
			collided = append(collided, f)
		}
	}

	for _, f := range collided {
		for n := 1; ; n++ {
			suffix := fmt.Sprintf("~%d", n)
			candidate := ShortLabel(f, width-len(suffix)) + suffix
			if !used[candidate] {
				labels[f] = candidate
				used[candidate] = true
				break
			}
		}
	}
	return labels
}

// ShortLabel 牌面的短显示名：去掉扩展名并截断
func ShortLabel(face string, width int) string {
	name := strings.TrimSuffix(face, filepath.Ext(face))
	runes := []rune(name)
	if width > 0 && len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}
