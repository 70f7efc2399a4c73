package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var valid = validator.New()

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server" comment:"HTTP服务配置"`
	Link      LinkConfig      `yaml:"link" mapstructure:"link" comment:"MAVLink链路配置"`
	Collector CollectorConfig `yaml:"collector" mapstructure:"collector" comment:"遥测采集配置"`
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor" comment:"自监控上报配置"`
	Log       ZapLogConfig    `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" env:"SERVER_ADDR" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" env:"SERVER_READ_TIMEOUT" validate:"required,gt=0" comment:"读取超时时间（如30s）"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" env:"SERVER_WRITE_TIMEOUT" validate:"required,gt=0" comment:"写入超时时间（如30s）"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" validate:"required,gt=0" comment:"空闲连接超时时间（如60s）"`
}

// LinkConfig MAVLink链路配置。Endpoint 采用 pymavlink 风格连接串：
// udp:host:port（监听）、udpout:host:port（外发）、tcp:host:port、tcpin:host:port、
// serial:device:baud，或直接写设备路径 /dev/ttyUSB0。
type LinkConfig struct {
	Endpoint         string        `yaml:"endpoint" mapstructure:"endpoint" env:"LINK_ENDPOINT" validate:"required" comment:"连接串（如 udp:0.0.0.0:14550）"`
	SystemID         uint8         `yaml:"system_id" mapstructure:"system_id" env:"LINK_SYSTEM_ID" validate:"required" comment:"本端MAVLink系统ID（地面端惯例255）"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout" mapstructure:"heartbeat_timeout" env:"LINK_HEARTBEAT_TIMEOUT" validate:"required,gt=0" comment:"等待首个心跳的超时时间"`
}

// CollectorConfig 遥测采集配置（按消息类型开关）
type CollectorConfig struct {
	Attitude    KindConfig `yaml:"attitude" mapstructure:"attitude" comment:"ATTITUDE 采集开关"`
	Position    KindConfig `yaml:"position" mapstructure:"position" comment:"GLOBAL_POSITION_INT 采集开关"`
	BufferLimit int        `yaml:"buffer_limit" mapstructure:"buffer_limit" env:"COLLECTOR_BUFFER_LIMIT" validate:"gte=0" comment:"单类型缓冲上限（0=不限，超限丢弃最旧）"`
}

// KindConfig 单个消息类型的开关
type KindConfig struct {
	Enable bool `yaml:"enable" mapstructure:"enable" comment:"是否采集该类型"`
}

// MonitorConfig 自监控与状态上报配置
type MonitorConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval" env:"MONITOR_INTERVAL" validate:"required,gt=0" comment:"状态上报间隔（如10s）" default:"10s"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" env:"LOG_FORMAT" validate:"required,oneof=json console" comment:"控制台输出格式（json/console）" default:"json"`
	Path      string `yaml:"path" mapstructure:"path" env:"LOG_PATH" validate:"required" comment:"日志存储路径" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" env:"LOG_MAX_SIZE" validate:"required,gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" env:"LOG_MAX_BACKUP" validate:"required,gte=0" comment:"日志文件最大备份数" default:"30"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" env:"LOG_MAX_AGE" validate:"required,gte=0" comment:"日志文件最大保存天数" default:"7"`
	Compress  bool   `yaml:"compress" mapstructure:"compress" env:"LOG_COMPRESS" comment:"是否压缩过期日志" default:"true"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "0.0.0.0:8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Link: LinkConfig{
			Endpoint:         "udp:0.0.0.0:14550",
			SystemID:         255,
			HeartbeatTimeout: 30 * time.Second,
		},
		Collector: CollectorConfig{
			Attitude:    KindConfig{Enable: true},
			Position:    KindConfig{Enable: true},
			BufferLimit: 0,
		},
		Monitor: MonitorConfig{
			Interval: 10 * time.Second,
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "json",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 30,
			MaxAge:    7,
			Compress:  true,
		},
	}
}

// LoadConfigWithCli 支持 time.Duration，(Flags + YAML + ENV)
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	// 2. 解析配置文件 (--config)。默认路径允许缺省（纯 flags/env 启动）；
	//    显式用 -c 指定的文件必须存在。
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if cmd.Flags().Changed("config") || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config file %s: %w", configFile, err)
			}
		}
	}

	// 3. 绑定环境变量 ENV -> Viper （SERVER_ADDR -> server.addr）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. 解码反序列化到结构体（支持 time.Duration）
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate 配置校验
func (c *Config) Validate() error {
	err := valid.Struct(c)
	if err != nil {
		return err
	}
	// 	1,校验Server服务配置
	if err := c.Server.Validate(); err != nil {
		return err
	}
	// 	2，校验链路配置
	if err := c.Link.Validate(); err != nil {
		return err
	}
	// 	3，校验采集配置
	if err := c.Collector.Validate(); err != nil {
		return err
	}
	// 	4，校验自监控配置
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	// 	5，校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
