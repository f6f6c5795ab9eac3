package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrReadConfig ошибка чтения файла конфигурации
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig ошибка валидации конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config корневая конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Booking       BookingConfig       `toml:"booking"`
	Notifications NotificationsConfig `toml:"notifications"`
	Telegram      TelegramConfig      `toml:"telegram"`
	Redis         RedisConfig         `toml:"redis"`
	Kafka         KafkaConfig         `toml:"kafka"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig политика бронирования по умолчанию
// Переопределяется для конкретного исполнителя через provider_policies
type BookingConfig struct {
	Timezone                string                  `toml:"timezone"`
	OpenTime                types.TimeOfDay         `toml:"open_time"`
	CloseTime               types.TimeOfDay         `toml:"close_time"`
	AppointmentDurationMins int                     `toml:"appointment_duration_minutes"`
	GridMinutes             int                     `toml:"grid_minutes"`
	DailyCapacity           int                     `toml:"daily_capacity"`
	ClientCap               int                     `toml:"client_cap"`
	LeadTimeThreshold       int                     `toml:"lead_time_threshold"`
	LeadTimeBaseDays        int                     `toml:"lead_time_base_days"`
	LeadTimeEscalatedDays   int                     `toml:"lead_time_escalated_days"`
	LeadTimeLoadDate        domain.LeadTimeLoadDate `toml:"lead_time_load_date"`
}

// Location возвращает часовой пояс исполнителя
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// Policy собирает политику бронирования по умолчанию
func (b BookingConfig) Policy() (domain.BookingPolicy, error) {
	loc, err := b.Location()
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	return domain.BookingPolicy{
		Location:              loc,
		OpenTime:              b.OpenTime,
		CloseTime:             b.CloseTime,
		DurationMinutes:       b.AppointmentDurationMins,
		GridMinutes:           b.GridMinutes,
		DailyCapacity:         b.DailyCapacity,
		ClientCap:             b.ClientCap,
		LeadTimeThreshold:     b.LeadTimeThreshold,
		LeadTimeBaseDays:      b.LeadTimeBaseDays,
		LeadTimeEscalatedDays: b.LeadTimeEscalatedDays,
		LeadTimeLoadDate:      b.LeadTimeLoadDate,
	}, nil
}

// NotificationsConfig настройки рассылки уведомлений о доступности
type NotificationsConfig struct {
	SendIntervalMs    int   `toml:"send_interval_ms"`
	AdminChatID       int64 `toml:"admin_chat_id"`
	SubscriptionTTLHr int   `toml:"subscription_ttl_hours"`
}

// SendInterval пауза между последовательными отправками
func (n NotificationsConfig) SendInterval() time.Duration {
	return time.Duration(n.SendIntervalMs) * time.Millisecond
}

// SubscriptionTTL время жизни подписки на дату
func (n NotificationsConfig) SubscriptionTTL() time.Duration {
	return time.Duration(n.SubscriptionTTLHr) * time.Hour
}

// TelegramConfig настройки канала уведомлений
// Пустой токен отключает отправку (уведомления только логируются)
type TelegramConfig struct {
	Token   string `toml:"token"`
	Timeout int    `toml:"timeout"` // секунды
}

// RedisConfig настройки реестра подписчиков
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig настройки публикации событий
// Пустой список брокеров отключает публикацию в Kafka
type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	TopicPrefix string   `toml:"topic_prefix"`
}

// Enabled проверяет, настроена ли публикация в Kafka
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}
	return Parse(string(data))
}

// Parse разбирает конфигурацию из строки
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "appointment-service",
		},
		Booking: BookingConfig{
			Timezone:                "America/Toronto",
			OpenTime:                types.MustParseTimeOfDay("11:00"),
			CloseTime:               types.MustParseTimeOfDay("20:00"),
			AppointmentDurationMins: 90,
			GridMinutes:             30,
			DailyCapacity:           5,
			ClientCap:               2,
			LeadTimeThreshold:       5,
			LeadTimeBaseDays:        1,
			LeadTimeEscalatedDays:   2,
			LeadTimeLoadDate:        domain.LoadDateTomorrow,
		},
		Notifications: NotificationsConfig{
			SendIntervalMs:    100,
			SubscriptionTTLHr: 72,
		},
		Telegram: TelegramConfig{
			Timeout: 10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfig{
			TopicPrefix: "appointments",
		},
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}

	b := c.Booking
	if _, err := b.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	if !b.OpenTime.IsValid() || !b.CloseTime.IsValid() || b.OpenTime >= b.CloseTime {
		return fmt.Errorf("%w: booking.open_time must be before booking.close_time", ErrInvalidConfig)
	}
	if b.AppointmentDurationMins <= 0 {
		return fmt.Errorf("%w: booking.appointment_duration_minutes must be positive", ErrInvalidConfig)
	}
	if b.GridMinutes <= 0 {
		return fmt.Errorf("%w: booking.grid_minutes must be positive", ErrInvalidConfig)
	}
	if b.DailyCapacity <= 0 || b.ClientCap <= 0 || b.LeadTimeThreshold <= 0 {
		return fmt.Errorf("%w: booking capacity, client cap and lead time threshold must be positive", ErrInvalidConfig)
	}
	if b.LeadTimeBaseDays < 0 || b.LeadTimeEscalatedDays < b.LeadTimeBaseDays {
		return fmt.Errorf("%w: booking.lead_time_escalated_days must be >= lead_time_base_days >= 0", ErrInvalidConfig)
	}
	if !b.LeadTimeLoadDate.IsValid() {
		return fmt.Errorf("%w: booking.lead_time_load_date must be %q or %q",
			ErrInvalidConfig, domain.LoadDateTomorrow, domain.LoadDateTargetEve)
	}

	if c.Notifications.SendIntervalMs < 0 {
		return fmt.Errorf("%w: notifications.send_interval_ms must not be negative", ErrInvalidConfig)
	}

	return nil
}
