package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 全局日志实例只创建一次，Init 仅调整其级别、格式与输出
var (
	log = newLogger()

	// 当前文件输出，重新初始化后关闭旧文件
	fileMu  sync.Mutex
	logFile *lumberjack.Logger
)

// Config 日志配置
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	Output     string `json:"output"` // console | file | both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"`
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"`
	Compress   bool   `json:"compress"`
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	return l
}

// Init 初始化日志，可重复调用（配置热更新）
// 命令行模式下控制台输出写到 stderr，stdout 留给报表与诊断之外的内容
func Init(config Config) error {
	level, err := logrus.ParseLevel(strings.TrimSpace(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}

	var formatter logrus.Formatter
	if strings.EqualFold(config.Format, "json") {
		formatter = &logrus.JSONFormatter{
			TimestampFormat:   "2006-01-02 15:04:05",
			DisableHTMLEscape: true,
		}
	} else {
		formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	}

	var writers []io.Writer
	output := strings.ToLower(strings.TrimSpace(config.Output))
	if output == "" {
		output = "console"
	}

	if output == "console" || output == "both" {
		writers = append(writers, os.Stderr)
	}

	var file *lumberjack.Logger
	if output == "file" || output == "both" {
		path := strings.TrimSpace(config.FilePath)
		if path == "" {
			path = "./logs/configparser.log"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	log.SetFormatter(formatter)
	log.SetOutput(io.MultiWriter(writers...))
	log.SetLevel(level)

	fileMu.Lock()
	prev := logFile
	logFile = file
	fileMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// GetLogger 获取日志实例
func GetLogger() *logrus.Logger {
	return log
}

func Info(args ...interface{}) {
	log.Info(args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

// WithField 添加字段
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields 添加多个字段
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}
