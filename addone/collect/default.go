package collect

// ParseContext 解析上下文
type ParseContext struct {
	Platform string
	// Source 文档来源（文件路径或 HTTP 请求标识）
	Source string
	// 以下信息用于落库
	TaskID string
	Status string
}

// ParseOutput 解析结果：结构化记录与其落库行
type ParseOutput struct {
	Platform string
	Source   string
	Record   ConfigRecord
	Rows     []FormattedRow
	// Skipped 名称不在支持范围内而被忽略的接口
	Skipped []string
}

// CollectPlugin 配置解析插件接口
type CollectPlugin interface {
	Name() string
	// SystemCommands 返回从设备拉取完整配置所用的命令
	SystemCommands() []string
	// Parse 将配置文本解析为结构化记录，尽力而为，不因内容异常报错
	Parse(ctx ParseContext, raw string) (ParseOutput, error)
}

// DefaultPlugin 未知平台使用的默认插件：不识别任何内容，仅返回默认值
type DefaultPlugin struct{}

func (p *DefaultPlugin) Name() string { return "default" }

// SystemCommands 默认平台不提供内置命令
func (p *DefaultPlugin) SystemCommands() []string { return []string{} }

func (p *DefaultPlugin) Parse(ctx ParseContext, raw string) (ParseOutput, error) {
	rec := NewConfigRecord()
	return ParseOutput{
		Platform: ctx.Platform,
		Source:   ctx.Source,
		Record:   rec,
		Rows:     RecordRows(ctx, rec),
	}, nil
}

// RecordRows 将记录展开为落库行：一行设备信息，每个接口一行
func RecordRows(ctx ParseContext, rec ConfigRecord) []FormattedRow {
	base := BaseRecord{
		TaskID:     ctx.TaskID,
		TaskStatus: ctx.Status,
		SourcePath: ctx.Source,
	}
	rows := make([]FormattedRow, 0, len(rec.Interfaces)+1)
	rows = append(rows, FormattedRow{
		Table: TableDeviceConfigs,
		Base:  base,
		Data: map[string]interface{}{
			"platform":        ctx.Platform,
			"hostname":        rec.Hostname,
			"serial_number":   rec.SerialNumber,
			"interface_count": len(rec.Interfaces),
		},
	})
	for i, itf := range rec.Interfaces {
		rows = append(rows, FormattedRow{
			Table: TableDeviceInterfaces,
			Base:  base,
			Data: map[string]interface{}{
				"position":    i,
				"hostname":    rec.Hostname,
				"int_name":    itf.Name,
				"description": StringOrNil(itf.Description),
				"ip_address":  StringOrNil(itf.IPAddress),
				"dot1q_vlan":  StringOrNil(itf.Dot1QVLAN),
			},
		})
	}
	return rows
}
