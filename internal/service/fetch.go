package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sshcollectorpro/configparser/addone/collect"
	"github.com/sshcollectorpro/configparser/internal/config"
	"github.com/sshcollectorpro/configparser/pkg/logger"
	"github.com/sshcollectorpro/configparser/pkg/ssh"
)

// FetchRequest 从设备拉取运行配置
type FetchRequest struct {
	Host     string
	Port     int
	Username string
	Password string
	Platform string
	// SavePath 拉取结果写入的本地路径（覆盖）
	SavePath string
}

// FetchRunningConfig 通过 SSH 执行平台的配置导出命令并保存到 SavePath
// 受 ssh.timeout 限制；任何失败都归为 UnexpectedError
func FetchRunningConfig(ctx context.Context, cfg *config.Config, req FetchRequest) error {
	plugin := collect.Get(req.Platform)
	commands := plugin.SystemCommands()
	if len(commands) == 0 {
		return &UnexpectedError{Op: "fetch config", Err: fmt.Errorf("platform %q has no export command", req.Platform)}
	}

	if cfg.SSH.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.SSH.Timeout)
		defer cancel()
	}

	client := ssh.NewClient(&ssh.Config{
		Timeout:   cfg.SSH.ConnectTimeout,
		KeepAlive: cfg.SSH.KeepAliveInterval,
	})
	info := &ssh.ConnectionInfo{
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
	}
	log := logger.WithFields(logrus.Fields{"host": req.Host, "platform": plugin.Name()})

	if err := client.Connect(ctx, info); err != nil {
		return &UnexpectedError{Op: "connect " + req.Host, Err: err}
	}
	defer client.Close()

	var sb strings.Builder
	for _, cmd := range commands {
		res, err := client.ExecuteCommand(ctx, cmd)
		if err != nil {
			return &UnexpectedError{Op: fmt.Sprintf("run %q on %s", cmd, req.Host), Err: err}
		}
		log.WithField("duration", res.Duration).Debugf("Command %q returned %d bytes", cmd, len(res.Output))
		sb.WriteString(res.Output)
	}

	if dir := filepath.Dir(req.SavePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &UnexpectedError{Op: "save fetched config", Err: err}
		}
	}
	if err := os.WriteFile(req.SavePath, []byte(sb.String()), 0o644); err != nil {
		return &UnexpectedError{Op: "save fetched config", Err: err}
	}
	log.WithField("path", req.SavePath).Info("Running config fetched")
	return nil
}
