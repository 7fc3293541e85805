package collect

// 未匹配到时使用的默认值（数据值，不是错误）
const (
	DefaultHostname     = "unknown"
	DefaultSerialNumber = "not available"
)

// 任务状态
const (
	TaskStatusSuccess = "success"
	TaskStatusFailed  = "failed"
)

// 落库表名
const (
	TableDeviceConfigs    = "device_configs"
	TableDeviceInterfaces = "device_interfaces"
)

// InterfaceRecord 单个接口的提取结果
// 可选字段为 nil 表示配置中不存在，与空字符串区分
type InterfaceRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IPAddress   *string `json:"ip_address,omitempty"`
	Dot1QVLAN   *string `json:"dot1q_vlan,omitempty"`
}

// ConfigRecord 一份配置导出的提取结果，接口按源文件出现顺序排列
type ConfigRecord struct {
	Hostname     string            `json:"hostname"`
	SerialNumber string            `json:"serial_number"`
	Interfaces   []InterfaceRecord `json:"interfaces"`
}

// NewConfigRecord 返回填充默认值的空记录
func NewConfigRecord() ConfigRecord {
	return ConfigRecord{
		Hostname:     DefaultHostname,
		SerialNumber: DefaultSerialNumber,
		Interfaces:   []InterfaceRecord{},
	}
}

// BaseRecord 所有落库行都包含的基础字段
type BaseRecord struct {
	TaskID     string `json:"task_id"`
	TaskStatus string `json:"task_status"`
	SourcePath string `json:"source_path"`
}

// Columns 基础字段的列映射
func (b BaseRecord) Columns() map[string]interface{} {
	return map[string]interface{}{
		"task_id":     b.TaskID,
		"task_status": b.TaskStatus,
		"source_path": b.SourcePath,
	}
}

// FormattedRow 格式化后的单行数据：目标表与列值
type FormattedRow struct {
	Table string                 `json:"table"`
	Base  BaseRecord             `json:"base"`
	Data  map[string]interface{} `json:"data"`
}

// Values 合并基础字段与数据字段，数据字段同名时优先
func (r FormattedRow) Values() map[string]interface{} {
	out := r.Base.Columns()
	for k, v := range r.Data {
		out[k] = v
	}
	return out
}

// StringOrNil 空指针转为 nil 接口值（落库为 NULL）
func StringOrNil(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
