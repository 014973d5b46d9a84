package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/wfunc/speed-memory/internal/errors"
	"github.com/wfunc/speed-memory/internal/game"
	"github.com/wfunc/speed-memory/internal/models"
	"gorm.io/gorm"
)

// SortColumn 排行榜排序字段
type SortColumn string

const (
	SortByScore SortColumn = "score"
	SortByTime  SortColumn = "time"
)

// ParseSortColumn 解析排序字段，空字符串按尝试次数排序
func ParseSortColumn(s string) (SortColumn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return SortByScore, nil
	case "time":
		return SortByTime, nil
	default:
		return "", errors.Newf(errors.ErrInvalidSortColumn, "column=%q", s)
	}
}

// SortHighScores 按字段升序稳定排序，另一字段用于打破平局
func SortHighScores(rows []*models.HighScore, column SortColumn) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if column == SortByTime {
			if a.Hundredths != b.Hundredths {
				return a.Hundredths < b.Hundredths
			}
			return a.Score < b.Score
		}
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return a.Hundredths < b.Hundredths
	})
}

// HighScoreRepository 高分仓储接口
type HighScoreRepository interface {
	BaseRepository
	EnsureTable(ctx context.Context, size int) error
	Create(ctx context.Context, size int, score *models.HighScore) error
	ListBySize(ctx context.Context, size int, column SortColumn, p *Pagination) ([]*models.HighScore, error)
}

// highScoreRepo 高分仓储实现
type highScoreRepo struct {
	*BaseRepo
}

// NewHighScoreRepository 创建高分仓储
func NewHighScoreRepository(db *gorm.DB) HighScoreRepository {
	return &highScoreRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// table 表名只由校验过的整数生成
func table(size int) (string, error) {
	if err := game.ValidateBoardSize(size); err != nil {
		return "", err
	}
	return models.HighScoreTable(size), nil
}

// EnsureTable 创建尺寸对应的表（已存在时无操作）
func (r *highScoreRepo) EnsureTable(ctx context.Context, size int) error {
	_, err := ensureTable(r.db.WithContext(ctx), size)
	return err
}

func ensureTable(db *gorm.DB, size int) (string, error) {
	name, err := table(size)
	if err != nil {
		return "", err
	}
	if db.Migrator().HasTable(name) {
		return name, nil
	}
	if err := db.Table(name).AutoMigrate(&models.HighScore{}); err != nil {
		return "", errors.Wrapf(err, errors.ErrDatabaseMigrate, "table=%s", name)
	}
	return name, nil
}

// Create 在同一事务中建表并写入一条高分记录
func (r *highScoreRepo) Create(ctx context.Context, size int, score *models.HighScore) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		name, err := ensureTable(tx, size)
		if err != nil {
			return err
		}
		if err := tx.Table(name).Create(score).Error; err != nil {
			return errors.Wrapf(err, errors.ErrDatabaseInsert, "size=%d", size)
		}
		return nil
	})
}

// ListBySize 查询某尺寸的排行榜，表不存在时返回空列表
func (r *highScoreRepo) ListBySize(ctx context.Context, size int, column SortColumn, p *Pagination) ([]*models.HighScore, error) {
	name, err := table(size)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = NewPagination(1, 10)
	}

	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(name) {
		p.Total = 0
		return []*models.HighScore{}, nil
	}

	var rows []*models.HighScore
	if err := db.Table(name).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, errors.ErrDatabaseQuery, "table=%s", name)
	}

	SortHighScores(rows, column)
	p.Total = int64(len(rows))
	start, end := p.Window(len(rows))
	return rows[start:end], nil
}
