package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DocumentPreview 配置文档的首尾行摘要
type DocumentPreview struct {
	TotalLines int      `json:"total_lines"`
	HeadLines  []string `json:"head_lines"`
	TailLines  []string `json:"tail_lines"`
}

// PreviewDocument 提取文档首尾各 maxLines 行（行数不足时 tail 为空）
func PreviewDocument(text string, maxLines int) DocumentPreview {
	if maxLines <= 0 {
		maxLines = 5
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return DocumentPreview{}
	}
	lines := strings.Split(text, "\n")
	p := DocumentPreview{TotalLines: len(lines)}

	headCount := min(maxLines, len(lines))
	p.HeadLines = append([]string(nil), lines[:headCount]...)

	// 首尾重叠时只保留 head
	if len(lines) > maxLines {
		start := max(len(lines)-maxLines, headCount)
		p.TailLines = append([]string(nil), lines[start:]...)
	}
	return p
}

// String 生成单行日志文本
func (p DocumentPreview) String() string {
	var parts []string
	if len(p.HeadLines) > 0 {
		parts = append(parts, "head-lines: ["+strings.Join(p.HeadLines, " ⟩ ")+"]")
	}
	if len(p.TailLines) > 0 {
		parts = append(parts, "tail-lines: ["+strings.Join(p.TailLines, " ⟩ ")+"]")
	}
	return strings.Join(parts, ", ")
}

// DebugDocument 在 debug 级别记录待解析文档的首尾行
func DebugDocument(source string, text string, maxLines int) {
	if !GetLogger().IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	p := PreviewDocument(text, maxLines)
	if p.TotalLines == 0 {
		return
	}
	WithFields(logrus.Fields{
		"source": source,
		"lines":  p.TotalLines,
	}).Debugf("Document echo: %s", p.String())
}
