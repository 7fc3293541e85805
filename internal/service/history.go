package service

import (
	"fmt"
	"time"

	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/sshcollectorpro/configparser/internal/database"
	"github.com/sshcollectorpro/configparser/internal/model"
	"gorm.io/gorm"
)

// 表名到模型的映射，用于按 FormattedRow.Table 落库
var rowModels = map[string]func() interface{}{
	collect.TableDeviceConfigs:    func() interface{} { return &model.DeviceConfig{} },
	collect.TableDeviceInterfaces: func() interface{} { return &model.DeviceInterface{} },
}

// HistoryStore 解析历史（只追加，不合并多次运行）
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore 使用已初始化的数据库；数据库未启用时返回 nil
func NewHistoryStore() *HistoryStore {
	db := database.GetDB()
	if db == nil {
		return nil
	}
	return &HistoryStore{db: db}
}

// Record 保存一次运行及其落库行
func (h *HistoryStore) Record(run *model.ParseRun, rows []collect.FormattedRow) error {
	if h == nil {
		return nil
	}
	return database.WithRetry(func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(run).Error; err != nil {
				return fmt.Errorf("save parse run: %w", err)
			}
			for _, row := range rows {
				newModel, ok := rowModels[row.Table]
				if !ok {
					return fmt.Errorf("unknown table %q", row.Table)
				}
				if err := tx.Model(newModel()).Create(row.Values()).Error; err != nil {
					return fmt.Errorf("save %s row: %w", row.Table, err)
				}
			}
			return nil
		})
	}, 3, 50*time.Millisecond)
}

// RecentRuns 最近的运行记录，按开始时间倒序
func (h *HistoryStore) RecentRuns(limit int) ([]model.ParseRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var runs []model.ParseRun
	err := h.db.Order("start_time DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// Interfaces 指定运行的接口行（按源文件顺序）
func (h *HistoryStore) Interfaces(runID string) ([]model.DeviceInterface, error) {
	var rows []model.DeviceInterface
	err := h.db.Where("task_id = ?", runID).Order("position ASC").Find(&rows).Error
	return rows, err
}
