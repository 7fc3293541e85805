package cisco_ios

import (
	"github.com/sshcollectorpro/configparser/addone/collect"
)

// Plugin Cisco IOS-XE running-config 解析插件
type Plugin struct{}

func (p *Plugin) Name() string { return "cisco_iosxe" }

// SystemCommands 拉取完整运行配置的命令
func (p *Plugin) SystemCommands() []string {
	return []string{"show running-config"}
}

// Parse 解析运行配置并生成落库行
func (p *Plugin) Parse(ctx collect.ParseContext, raw string) (collect.ParseOutput, error) {
	rec, skipped := scanRunningConfig(raw)
	return collect.ParseOutput{
		Platform: ctx.Platform,
		Source:   ctx.Source,
		Record:   rec,
		Rows:     collect.RecordRows(ctx, rec),
		Skipped:  skipped,
	}, nil
}

func init() {
	collect.Register("cisco_iosxe", &Plugin{})
	collect.Register("cisco_ios", &Plugin{})
}
