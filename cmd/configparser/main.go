package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sshcollectorpro/configparser/internal/config"
	"github.com/sshcollectorpro/configparser/internal/database"
	"github.com/sshcollectorpro/configparser/internal/service"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run 执行一次解析，返回进程退出码；失败时向 stderr 输出单行诊断
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("configparser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: configparser [flags] <config-file>\n")
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output report path (default <input dir>/parsed_<hostname>_config.<format>)")
	format := fs.String("format", "", "Report format: csv | xlsx (default from output extension or config)")
	platform := fs.String("platform", "", "Parser platform (default from config, cisco_iosxe)")
	configPath := fs.String("config", "", "YAML config path (default search ./configs)")
	sshHost := fs.String("ssh-host", "", "Fetch running config from this device before parsing")
	sshPort := fs.Int("ssh-port", 0, "SSH port (default from config, 22)")
	sshUser := fs.String("ssh-user", "", "SSH username (default from config)")
	sshPassword := fs.String("ssh-password", "", "SSH password (default from config)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	inputPath := fs.Arg(0)
	// 未知格式或与 -o 扩展名冲突视为用法错误
	if _, err := service.ResolveFormat(*format, *output, service.FormatCSV); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, service.Diagnostic(service.Classify("load config", err)))
		return 1
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		fmt.Fprintln(stderr, service.Diagnostic(service.Classify("init logger", err)))
		return 1
	}

	if cfg.Database.SQLite.Enabled {
		if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
			// 历史库不可用不影响解析
			logger.WithField("error", err).Warn("Parse history disabled")
		} else {
			defer database.Close()
		}
	}

	req := service.RunRequest{
		InputPath:  inputPath,
		OutputPath: *output,
		Format:     *format,
		Platform:   *platform,
	}
	if *sshHost != "" {
		req.Fetch = &service.FetchRequest{
			Host:     *sshHost,
			Port:     firstInt(*sshPort, cfg.SSH.Port),
			Username: firstString(*sshUser, cfg.SSH.Username),
			Password: firstString(*sshPassword, cfg.SSH.Password),
		}
	}

	if _, err := service.NewParseService(cfg).Run(context.Background(), req); err != nil {
		fmt.Fprintln(stderr, service.Diagnostic(err))
		return 1
	}
	return 0
}

func firstString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func firstInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
