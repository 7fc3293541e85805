package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/xuri/excelize/v2"
)

// 报表格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// NotAvailable 可选字段缺失时的占位值
const NotAvailable = "N/A"

const xlsxSheet = "Config"

// ReportRows 将记录展开为 Variable/Value 两列行（含表头）
func ReportRows(rec collect.ConfigRecord) [][]string {
	rows := make([][]string, 0, 3+4*len(rec.Interfaces))
	rows = append(rows,
		[]string{"Variable", "Value"},
		[]string{"Hostname", rec.Hostname},
		[]string{"Serial Number", rec.SerialNumber},
	)
	for _, itf := range rec.Interfaces {
		rows = append(rows,
			[]string{"Interface Name", itf.Name},
			[]string{"Description", valueOrNA(itf.Description)},
			[]string{"IP Address", valueOrNA(itf.IPAddress)},
			[]string{"Dot1Q VLAN", valueOrNA(itf.Dot1QVLAN)},
		)
	}
	return rows
}

func valueOrNA(p *string) string {
	if p == nil {
		return NotAvailable
	}
	return *p
}

// ReportWriter 报表写入器：创建或覆盖目标文件
type ReportWriter interface {
	Format() string
	Write(rec collect.ConfigRecord, destination string) error
}

// NewReportWriter 按格式返回写入器，未知格式使用 CSV
func NewReportWriter(format string) ReportWriter {
	if strings.EqualFold(strings.TrimSpace(format), FormatXLSX) {
		return &XLSXWriter{}
	}
	return &CSVWriter{}
}

// ResolveFormat 确定报表格式：显式格式只允许 csv/xlsx，且不得与目标扩展名冲突；
// 未指定时按扩展名，再按 fallback
func ResolveFormat(format, destination, fallback string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatFromPath(destination, fallback), nil
	}
	if format != FormatCSV && format != FormatXLSX {
		return "", fmt.Errorf("unsupported report format %q (want %s or %s)", format, FormatCSV, FormatXLSX)
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(destination), ".")); (ext == FormatCSV || ext == FormatXLSX) && ext != format {
		return "", fmt.Errorf("report format %q conflicts with output file %s", format, destination)
	}
	return format, nil
}

// FormatFromPath 目标路径带 .xlsx/.csv 扩展名时以扩展名为准
func FormatFromPath(destination, fallback string) string {
	switch strings.ToLower(filepath.Ext(destination)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	}
	if strings.EqualFold(fallback, FormatXLSX) {
		return FormatXLSX
	}
	return FormatCSV
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DefaultOutputPath 默认报表路径：<dir>/parsed_<hostname>_config.<ext>
// outputDir 为空时使用输入文件所在目录
func DefaultOutputPath(inputPath, outputDir, hostname, format string) string {
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	name := unsafeNameRe.ReplaceAllString(strings.TrimSpace(hostname), "_")
	if name == "" {
		name = collect.DefaultHostname
	}
	ext := FormatCSV
	if format == FormatXLSX {
		ext = FormatXLSX
	}
	return filepath.Join(dir, fmt.Sprintf("parsed_%s_config.%s", name, ext))
}

// CSVWriter UTF-8 CSV 报表
type CSVWriter struct{}

func (w *CSVWriter) Format() string { return FormatCSV }

func (w *CSVWriter) Write(rec collect.ConfigRecord, destination string) error {
	f, err := os.Create(destination)
	if err != nil {
		return &WriteError{Path: destination, Err: err}
	}
	if err := EncodeCSV(f, rec); err != nil {
		_ = f.Close()
		return &WriteError{Path: destination, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: destination, Err: err}
	}
	return nil
}

// EncodeCSV 将报表行写入 w
func EncodeCSV(w io.Writer, rec collect.ConfigRecord) error {
	return csv.NewWriter(w).WriteAll(ReportRows(rec))
}

// XLSXWriter 单工作表 Excel 报表，行内容与 CSV 相同
type XLSXWriter struct{}

func (w *XLSXWriter) Format() string { return FormatXLSX }

func (w *XLSXWriter) Write(rec collect.ConfigRecord, destination string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return &WriteError{Path: destination, Err: err}
	}
	for i, row := range ReportRows(rec) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return &WriteError{Path: destination, Err: err}
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return &WriteError{Path: destination, Err: err}
		}
	}
	_ = f.SetColWidth(xlsxSheet, "A", "A", 18)
	_ = f.SetColWidth(xlsxSheet, "B", "B", 40)

	if err := f.SaveAs(destination); err != nil {
		return &WriteError{Path: destination, Err: err}
	}
	return nil
}
