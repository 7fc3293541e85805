package service

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strp(s string) *string { return &s }

func fullRecord() collect.ConfigRecord {
	return collect.ConfigRecord{
		Hostname:     "R1",
		SerialNumber: "FDO21120U8C",
		Interfaces: []collect.InterfaceRecord{{
			Name:        "GigabitEthernet0/0/1.100",
			Description: strp("WAN Link"),
			IPAddress:   strp("10.0.0.1 255.255.255.0"),
			Dot1QVLAN:   strp("100"),
		}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterSingleInterface(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewReportWriter(FormatCSV).Write(fullRecord(), dest))

	rows := readCSV(t, dest)
	assert.Equal(t, [][]string{
		{"Variable", "Value"},
		{"Hostname", "R1"},
		{"Serial Number", "FDO21120U8C"},
		{"Interface Name", "GigabitEthernet0/0/1.100"},
		{"Description", "WAN Link"},
		{"IP Address", "10.0.0.1 255.255.255.0"},
		{"Dot1Q VLAN", "100"},
	}, rows, "表头 + 2 个顶层字段 + 每个接口 4 行")
}

func TestCSVWriterAbsentFieldsAndOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(dest, []byte("stale content\nmore\nlines\n"), 0o644))

	rec := collect.ConfigRecord{
		Hostname:     collect.DefaultHostname,
		SerialNumber: collect.DefaultSerialNumber,
		Interfaces: []collect.InterfaceRecord{
			{Name: "Loopback0", IPAddress: strp("1.1.1.1 255.255.255.255")},
			{Name: "GigabitEthernet2", Description: strp("")},
		},
	}
	require.NoError(t, (&CSVWriter{}).Write(rec, dest))

	rows := readCSV(t, dest)
	require.Len(t, rows, 11)
	assert.Equal(t, []string{"Hostname", "unknown"}, rows[1])
	assert.Equal(t, []string{"Serial Number", "not available"}, rows[2])
	assert.Equal(t, []string{"Description", "N/A"}, rows[4])
	assert.Equal(t, []string{"Dot1Q VLAN", "N/A"}, rows[6])
	assert.Equal(t, []string{"Interface Name", "GigabitEthernet2"}, rows[7])
	assert.Equal(t, []string{"Description", ""}, rows[8], "空字符串与缺失不同，不写 N/A")
}

func TestCSVWriterQuotesCommas(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	rec := collect.ConfigRecord{Hostname: "R1", SerialNumber: "X", Interfaces: []collect.InterfaceRecord{
		{Name: "GigabitEthernet1", Description: strp(`to "core", rack 4`)},
	}}
	require.NoError(t, (&CSVWriter{}).Write(rec, dest))
	assert.Equal(t, []string{"Description", `to "core", rack 4`}, readCSV(t, dest)[4])
}

func TestCSVWriterWriteError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing-dir", "out.csv")
	err := (&CSVWriter{}).Write(fullRecord(), dest)
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, dest, we.Path)
	assert.NotNil(t, errors.Unwrap(err), "应保留底层错误")
	assert.Contains(t, Diagnostic(err), "File Error: failed to write "+dest)
}

func TestXLSXWriter(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewReportWriter("XLSX").Write(fullRecord(), dest))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Config"}, f.GetSheetList())
	rows, err := f.GetRows("Config")
	require.NoError(t, err)
	assert.Equal(t, ReportRows(fullRecord()), rows)
}

func TestXLSXWriterWriteError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing-dir", "out.xlsx")
	var we *WriteError
	assert.ErrorAs(t, (&XLSXWriter{}).Write(fullRecord(), dest), &we)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromPath("/tmp/a.XLSX", FormatCSV))
	assert.Equal(t, FormatCSV, FormatFromPath("/tmp/a.csv", FormatXLSX))
	assert.Equal(t, FormatXLSX, FormatFromPath("", "xlsx"))
	assert.Equal(t, FormatCSV, FormatFromPath("/tmp/a.txt", ""))
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "parsed_R1_config.csv"), DefaultOutputPath("/cfg/r1.cfg", "", "R1", FormatCSV))
	assert.Equal(t, filepath.Join("/out", "parsed_core_sw_1_config.xlsx"), DefaultOutputPath("/cfg/r1.cfg", "/out", "core/sw 1", FormatXLSX))
	assert.Equal(t, filepath.Join("/cfg", "parsed_unknown_config.csv"), DefaultOutputPath("/cfg/r1.cfg", " ", "  ", "csv"))
}

func TestResolveFormat(t *testing.T) {
	f, err := ResolveFormat("", "/tmp/a.xlsx", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ResolveFormat(" XLSX ", "", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ResolveFormat("csv", "/tmp/report.txt", FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f, "非报表扩展名不冲突")

	_, err = ResolveFormat("json", "", FormatCSV)
	assert.ErrorContains(t, err, "unsupported report format")

	_, err = ResolveFormat("xlsx", "/tmp/out.csv", FormatCSV)
	assert.ErrorContains(t, err, "conflicts")
}
