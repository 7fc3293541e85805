package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sshcollectorpro/configparser/pkg/logger"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Parser   ParserConfig   `mapstructure:"parser"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	SSH      SSHConfig      `mapstructure:"ssh"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxBodyBytes 单次提交的配置文本上限
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// ParserConfig 解析与报表输出配置
type ParserConfig struct {
	// Platform 默认解析平台（插件名）
	Platform string `mapstructure:"platform"`
	// OutputFormat 报表格式：csv | xlsx
	OutputFormat string `mapstructure:"output_format"`
	// OutputDir 未指定输出路径时的报表目录，空表示与输入文件同目录
	OutputDir string `mapstructure:"output_dir"`
	// PreviewLines debug 日志中打印的文档首尾行数
	PreviewLines int `mapstructure:"preview_lines"`
}

// StorageConfig 报表存储配置
type StorageConfig struct {
	// Backend 报表写入本地后是否额外上传：local | minio
	Backend string      `mapstructure:"backend"`
	Prefix  string      `mapstructure:"prefix"`
	Minio   MinioConfig `mapstructure:"minio"`
}

// MinioConfig 对象存储配置
type MinioConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig 解析历史库配置
type SQLiteConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SSHConfig 从设备拉取配置时使用的 SSH 参数
type SSHConfig struct {
	Port              int           `mapstructure:"port"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load 加载配置
// configPath 为空时按默认目录查找 config.yaml，找不到则只使用默认值与环境变量
func Load(configPath string) (*Config, error) {
	// .env 可选，存在时先注入环境变量
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("CONFIG_PARSER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&config)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 8<<20)

	v.SetDefault("parser.platform", "cisco_iosxe")
	v.SetDefault("parser.output_format", "csv")
	v.SetDefault("parser.output_dir", "")
	v.SetDefault("parser.preview_lines", 5)

	// 默认只写本地文件
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.prefix", "config-reports")
	v.SetDefault("storage.minio.host", "")
	v.SetDefault("storage.minio.port", 9000)
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "configparser")
	v.SetDefault("storage.minio.secure", false)

	v.SetDefault("database.sqlite.enabled", false)
	v.SetDefault("database.sqlite.path", "./data/configparser.db")
	v.SetDefault("database.sqlite.conn_max_lifetime", time.Hour)

	v.SetDefault("ssh.port", 22)
	v.SetDefault("ssh.username", "")
	v.SetDefault("ssh.password", "")
	v.SetDefault("ssh.timeout", 60*time.Second)
	v.SetDefault("ssh.connect_timeout", 7*time.Second)
	v.SetDefault("ssh.keep_alive_interval", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "./logs/configparser.log")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", false)
}

// normalize 统一大小写与空白，修正非法取值
func normalize(cfg *Config) {
	cfg.Parser.Platform = strings.ToLower(strings.TrimSpace(cfg.Parser.Platform))
	if cfg.Parser.Platform == "" {
		cfg.Parser.Platform = "cisco_iosxe"
	}
	cfg.Parser.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.Parser.OutputFormat))
	if cfg.Parser.OutputFormat != "xlsx" {
		cfg.Parser.OutputFormat = "csv"
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if cfg.Storage.Backend != "minio" {
		cfg.Storage.Backend = "local"
	}
	if cfg.SSH.Port <= 0 {
		cfg.SSH.Port = 22
	}
}

// GetServerAddr 获取服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetMinioEndpoint MinIO 地址，未配置 host 时返回空串
func (c *Config) GetMinioEndpoint() string {
	host := strings.TrimSpace(c.Storage.Minio.Host)
	if host == "" || c.Storage.Minio.Port <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", host, c.Storage.Minio.Port)
}

// LoggerConfig 转换为日志模块配置
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		Output:     c.Log.Output,
		FilePath:   c.Log.FilePath,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
		Compress:   c.Log.Compress,
	}
}
