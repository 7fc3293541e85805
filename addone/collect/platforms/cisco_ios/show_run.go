package cisco_ios

import (
	"regexp"
	"strings"

	"github.com/sshcollectorpro/configparser/addone/collect"
)

// 仅识别 GigabitEthernet（含子接口）与 Loopback 两类接口名，其他接口静默跳过
var interfaceNameRe = regexp.MustCompile(`^(?:GigabitEthernet[0-9/.]+|Loopback[0-9]+)$`)

// lineRule 命名的单行匹配规则
// line 为去除行首缩进后的文本，命中时返回捕获值
type lineRule struct {
	name  string
	match func(line string) (string, bool)
}

// 顶层规则：只作用于行首无缩进的语句
var (
	hostnameRule = lineRule{
		name: "hostname",
		match: func(line string) (string, bool) {
			f := strings.Fields(line)
			if len(f) >= 2 && f[0] == "hostname" {
				return f[1], true
			}
			return "", false
		},
	}

	// license udi pid <pid> sn <serial>
	licenseUDIRule = lineRule{
		name: "license-udi",
		match: func(line string) (string, bool) {
			f := strings.Fields(line)
			if len(f) >= 6 && f[0] == "license" && f[1] == "udi" && f[2] == "pid" && f[4] == "sn" {
				return f[5], true
			}
			return "", false
		},
	}
)

// 接口块内规则：只作用于缩进行
var (
	descriptionRule = lineRule{
		name: "description",
		match: func(line string) (string, bool) {
			rest, ok := strings.CutPrefix(line, "description")
			if !ok || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
				return "", false
			}
			v := strings.TrimSpace(rest)
			return v, v != ""
		},
	}

	ipAddressRule = lineRule{
		name: "ip-address",
		match: func(line string) (string, bool) {
			f := strings.Fields(line)
			if len(f) >= 4 && f[0] == "ip" && f[1] == "address" {
				return f[2] + " " + f[3], true
			}
			return "", false
		},
	}

	dot1QRule = lineRule{
		name: "encapsulation-dot1q",
		match: func(line string) (string, bool) {
			f := strings.Fields(line)
			if len(f) >= 3 && f[0] == "encapsulation" && f[1] == "dot1Q" {
				if n := leadingDigits(f[2]); n != "" {
					return n, true
				}
			}
			return "", false
		},
	}
)

// fieldRule 将块内规则绑定到接口记录的可选字段
type fieldRule struct {
	lineRule
	field func(r *collect.InterfaceRecord) **string
}

var interfaceRules = []fieldRule{
	{descriptionRule, func(r *collect.InterfaceRecord) **string { return &r.Description }},
	{ipAddressRule, func(r *collect.InterfaceRecord) **string { return &r.IPAddress }},
	{dot1QRule, func(r *collect.InterfaceRecord) **string { return &r.Dot1QVLAN }},
}

// ExtractRunningConfig 从 show running-config 文本中提取主机名、序列号与接口信息
func ExtractRunningConfig(document string) collect.ConfigRecord {
	rec, _ := scanRunningConfig(document)
	return rec
}

// scanRunningConfig 逐行扫描配置
// 接口块从 "interface <name>" 开始，到下一条行首无缩进的语句结束（不含），空行不结束块
func scanRunningConfig(document string) (collect.ConfigRecord, []string) {
	rec := collect.NewConfigRecord()
	var skipped []string
	var hostnameFound, serialFound bool
	var current *collect.InterfaceRecord

	closeBlock := func() {
		if current != nil {
			rec.Interfaces = append(rec.Interfaces, *current)
			current = nil
		}
	}

	for _, line := range splitLines(document) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if isIndented(line) {
			if current != nil {
				applyInterfaceRules(current, strings.TrimLeft(line, " \t"))
			}
			continue
		}

		// 行首无缩进：上一个接口块到此结束
		closeBlock()

		if !hostnameFound {
			if v, ok := hostnameRule.match(line); ok {
				rec.Hostname = v
				hostnameFound = true
				continue
			}
		}
		if !serialFound {
			if v, ok := licenseUDIRule.match(line); ok {
				rec.SerialNumber = v
				serialFound = true
				continue
			}
		}

		f := strings.Fields(line)
		if len(f) >= 2 && f[0] == "interface" {
			if interfaceNameRe.MatchString(f[1]) {
				current = &collect.InterfaceRecord{Name: f[1]}
			} else {
				skipped = append(skipped, f[1])
			}
		}
	}
	closeBlock()

	return rec, skipped
}

// applyInterfaceRules 每个字段只取块内第一条命中的行
func applyInterfaceRules(r *collect.InterfaceRecord, line string) {
	for _, fr := range interfaceRules {
		dst := fr.field(r)
		if *dst != nil {
			continue
		}
		if v, ok := fr.match(line); ok {
			*dst = &v
			return
		}
	}
}

func splitLines(document string) []string {
	document = strings.ReplaceAll(document, "\r\n", "\n")
	document = strings.ReplaceAll(document, "\r", "\n")
	return strings.Split(document, "\n")
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
