package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-matcher/internal/resume"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// PDF解析器配置
	PDF PDFConfig `yaml:"pdf"`

	// 解码文本缓存，地址为空时不启用
	Redis RedisConfig `yaml:"redis"`

	// 原始上传文件归档，endpoint为空时不启用
	MinIO MinIOConfig `yaml:"minio"`

	Tracing TracingConfig `yaml:"tracing"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address          string   `yaml:"address"`             // 例如 ":8080" or "0.0.0.0:8080"
	APIKeys          []string `yaml:"api_keys"`            // 为空时不校验 X-API-Key
	MaxRequestBodyMB int      `yaml:"max_request_body_mb"` // 上传请求体上限(MB)
}

// AnalyzerConfig 简历分析配置
type AnalyzerConfig struct {
	DocumentTimeout string `yaml:"document_timeout"` // 单份简历解码+分析的超时，例如 "30s"
	PhoneRegion     string `yaml:"phone_region"`     // 电话号码规则所属地区，取值见 resume.PhoneShapesByRegion
}

// PDFConfig PDF解析器配置
type PDFConfig struct {
	Type          string `yaml:"type"`            // "eino" 或 "tika"
	TikaServerURL string `yaml:"tika_server_url"` // Tika服务器URL
	Timeout       int    `yaml:"timeout_seconds"` // 超时时间(秒)
	MetadataMode  string `yaml:"metadata_mode"`   // 元数据模式: "full", "minimal", "none"
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	MaxRetries          int `yaml:"max_retries"`           // 最大重试次数
	// 解码文本缓存过期时间(小时)
	TextCacheTTLHours int `yaml:"text_cache_ttl_hours"`
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 原始简历存储桶
	OriginalsBucket string `yaml:"originalsBucket"`
	// 原始文件过期天数，0 表示不设置生命周期
	OriginalFileExpireDays int `yaml:"original_file_expire_days"`
}

// TracingConfig OpenTelemetry 链路追踪配置
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"` // 例如 "localhost:4317"
	ServiceName  string `yaml:"service_name"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LoadConfig 从文件加载配置，随后应用环境变量覆盖和默认值。
// configPath 为空时在常见位置查找 config.yaml，找不到则只使用默认值。
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}

	config := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("配置文件不存在: %s", configPath)
			}
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(config)
	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		"../config.yaml",
		"../../config.yaml",
		filepath.Join(os.Getenv("HOME"), ".resume-matcher", "config.yaml"),
	}
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(config *Config) {
	if addr := os.Getenv("RESUME_SERVER_ADDRESS"); addr != "" {
		config.Server.Address = addr
	}
	if addr := os.Getenv("RESUME_REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if keys := os.Getenv("RESUME_API_KEYS"); keys != "" {
		config.Server.APIKeys = config.Server.APIKeys[:0]
		for _, key := range strings.Split(keys, ",") {
			if key = strings.TrimSpace(key); key != "" {
				config.Server.APIKeys = append(config.Server.APIKeys, key)
			}
		}
	}
}

func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080" // 默认服务器地址
	}
	if config.Server.MaxRequestBodyMB <= 0 {
		config.Server.MaxRequestBodyMB = 20
	}

	if config.Analyzer.DocumentTimeout == "" {
		config.Analyzer.DocumentTimeout = "30s"
	}
	if config.Analyzer.PhoneRegion == "" {
		config.Analyzer.PhoneRegion = resume.DefaultPhoneRegion
	}

	if config.PDF.Type == "" {
		config.PDF.Type = "eino"
	}
	if config.PDF.Timeout <= 0 {
		config.PDF.Timeout = 60
	}
	if config.PDF.MetadataMode == "" {
		config.PDF.MetadataMode = "minimal"
	}

	if config.Redis.PoolSize == 0 {
		config.Redis.PoolSize = 10
	}
	if config.Redis.MinIdleConns == 0 {
		config.Redis.MinIdleConns = 2
	}
	if config.Redis.DialTimeoutSeconds == 0 {
		config.Redis.DialTimeoutSeconds = 5
	}
	if config.Redis.ReadTimeoutSeconds == 0 {
		config.Redis.ReadTimeoutSeconds = 3
	}
	if config.Redis.WriteTimeoutSeconds == 0 {
		config.Redis.WriteTimeoutSeconds = 3
	}
	if config.Redis.MaxRetries == 0 {
		config.Redis.MaxRetries = 3
	}
	if config.Redis.TextCacheTTLHours == 0 {
		config.Redis.TextCacheTTLHours = 24
	}

	if config.MinIO.OriginalsBucket == "" {
		config.MinIO.OriginalsBucket = "resume-originals"
	}

	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "resume-matcher"
	}
	if config.Tracing.OTLPEndpoint == "" {
		config.Tracing.OTLPEndpoint = "localhost:4317"
	}

	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "pretty"
	}
	if config.Logger.TimeFormat == "" {
		config.Logger.TimeFormat = "2006-01-02 15:04:05"
	}
}

// Validate 检查配置的取值范围
func (c *Config) Validate() error {
	switch c.PDF.Type {
	case "eino":
	case "tika":
		if c.PDF.TikaServerURL == "" {
			return fmt.Errorf("pdf.type 为 tika 时必须配置 pdf.tika_server_url")
		}
	default:
		return fmt.Errorf("不支持的 pdf.type: %q", c.PDF.Type)
	}
	if _, ok := resume.PhoneShapesByRegion[c.Analyzer.PhoneRegion]; !ok {
		return fmt.Errorf("不支持的 analyzer.phone_region: %q", c.Analyzer.PhoneRegion)
	}
	if _, err := time.ParseDuration(c.Analyzer.DocumentTimeout); err != nil {
		return fmt.Errorf("analyzer.document_timeout 格式错误: %w", err)
	}
	return nil
}

// DocumentTimeout 单份简历的处理超时
func (c *Config) DocumentTimeout() time.Duration {
	return GetDuration(c.Analyzer.DocumentTimeout, 30*time.Second)
}

// TextCacheTTL 解码文本缓存的过期时间
func (c *Config) TextCacheTTL() time.Duration {
	return time.Duration(c.Redis.TextCacheTTLHours) * time.Hour
}

// MaxRequestBodySize 请求体上限(字节)
func (c *Config) MaxRequestBodySize() int {
	return c.Server.MaxRequestBodyMB * 1024 * 1024
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	config := &Config{}
	applyDefaults(config)

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
