package model

import "time"

// DeviceConfig 单次解析得到的设备级字段
// 列名与 addone/collect.RecordRows 生成的 device_configs 行一致
type DeviceConfig struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TaskID         string    `json:"task_id" gorm:"type:varchar(64);not null;index"`
	TaskStatus     string    `json:"task_status" gorm:"type:varchar(16)"`
	SourcePath     string    `json:"source_path" gorm:"type:text"`
	Platform       string    `json:"platform" gorm:"type:varchar(32)"`
	Hostname       string    `json:"hostname" gorm:"type:varchar(128);index"`
	SerialNumber   string    `json:"serial_number" gorm:"type:varchar(64)"`
	InterfaceCount int       `json:"interface_count"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (DeviceConfig) TableName() string {
	return "device_configs"
}

// DeviceInterface 单个接口行，可选字段为 NULL 表示配置中不存在
type DeviceInterface struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskID      string    `json:"task_id" gorm:"type:varchar(64);not null;index"`
	TaskStatus  string    `json:"task_status" gorm:"type:varchar(16)"`
	SourcePath  string    `json:"source_path" gorm:"type:text"`
	Position    int       `json:"position" gorm:"not null"`
	Hostname    string    `json:"hostname" gorm:"type:varchar(128)"`
	IntName     string    `json:"int_name" gorm:"type:varchar(64);not null"`
	Description *string   `json:"description" gorm:"type:text"`
	IPAddress   *string   `json:"ip_address" gorm:"type:varchar(64)"`
	Dot1QVLAN   *string   `json:"dot1q_vlan" gorm:"column:dot1q_vlan;type:varchar(8)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (DeviceInterface) TableName() string {
	return "device_interfaces"
}
