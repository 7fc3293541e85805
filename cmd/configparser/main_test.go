package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sshcollectorpro/configparser/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deviceConfig = `hostname CORE-1
license udi pid ASR1001-X sn JAE12345678
interface GigabitEthernet0/0/0
 description Core uplink
 ip address 10.0.0.1 255.255.255.252
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// quietConfig 测试用配置：仅输出 error 级别日志
func quietConfig(t *testing.T, dir string) string {
	return writeFile(t, dir, "config.yaml", "log:\n  level: error\n  output: console\n")
}

func TestRunWritesDefaultReport(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "core.cfg", deviceConfig)

	var stderr bytes.Buffer
	code := run([]string{"-config", quietConfig(t, dir), input}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stderr.String())

	out, err := os.ReadFile(filepath.Join(dir, "parsed_CORE-1_config.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Variable,Value\nHostname,CORE-1\nSerial Number,JAE12345678\n"))
	assert.Contains(t, string(out), "Dot1Q VLAN,N/A\n")
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "absent.cfg")

	var stderr bytes.Buffer
	code := run([]string{"-config", quietConfig(t, dir), missing}, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: the file "+missing+" does not exist.\n", stderr.String())
}

func TestRunUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "core.cfg", deviceConfig)
	out := filepath.Join(dir, "nope", "report.csv")

	var stderr bytes.Buffer
	code := run([]string{"-config", quietConfig(t, dir), "-o", out, input}, &stderr)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "File Error: failed to write "+out))
	assert.Equal(t, 1, strings.Count(stderr.String(), "\n"), "只输出一行诊断")
}

func TestRunUsage(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stderr))
	assert.Contains(t, stderr.String(), "Usage: configparser")
}

func TestRunRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "core.cfg", deviceConfig)

	var stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-format", "json", input}, &stderr))
	assert.Contains(t, stderr.String(), `unsupported report format "json"`)
	assert.NoFileExists(t, filepath.Join(dir, "parsed_CORE-1_config.csv"))

	stderr.Reset()
	out := filepath.Join(dir, "out.csv")
	assert.Equal(t, 2, run([]string{"-format", "xlsx", "-o", out, input}, &stderr))
	assert.Contains(t, stderr.String(), "conflicts with output file")
	assert.NoFileExists(t, out)
}

func TestRunFormatMatchesOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "core.cfg", deviceConfig)
	out := filepath.Join(dir, "out.xlsx")

	var stderr bytes.Buffer
	code := run([]string{"-config", quietConfig(t, dir), "-format", "XLSX", "-o", out, input}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, out)
}

func TestRunFetchOverSSH(t *testing.T) {
	srv := testutil.StartSSHServer(t, "netops", "pw", map[string]string{
		"show running-config": deviceConfig,
	})
	dir := t.TempDir()
	input := filepath.Join(dir, "core.cfg")
	out := filepath.Join(dir, "core.xlsx")

	var stderr bytes.Buffer
	code := run([]string{
		"-config", quietConfig(t, dir),
		"-ssh-host", srv.Host,
		"-ssh-port", strconv.Itoa(srv.Port),
		"-ssh-user", "netops",
		"-ssh-password", "pw",
		"-o", out,
		input,
	}, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, input)
	assert.FileExists(t, out)
}
