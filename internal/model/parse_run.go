package model

import (
	"time"
)

// ParseRun 一次解析任务记录
type ParseRun struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Platform       string    `json:"platform" gorm:"type:varchar(32);not null"`
	SourcePath     string    `json:"source_path" gorm:"type:text;not null"`
	OutputPath     string    `json:"output_path" gorm:"type:text"`
	OutputFormat   string    `json:"output_format" gorm:"type:varchar(8)"`
	StoredURI      string    `json:"stored_uri" gorm:"type:text"`
	Hostname       string    `json:"hostname" gorm:"type:varchar(128);index"`
	InterfaceCount int       `json:"interface_count" gorm:"not null;default:0"`
	Status         string    `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	ErrorKind      string    `json:"error_kind" gorm:"type:varchar(32)"`
	ErrorMsg       string    `json:"error_msg" gorm:"type:text"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       int64     `json:"duration"` // 执行时长，毫秒
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (ParseRun) TableName() string {
	return "parse_runs"
}

// 任务状态
const (
	RunStatusPending = "pending"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)
