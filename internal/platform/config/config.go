package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Database  DatabaseConfig  `yaml:"database"`
}

// SchedulerConfig はライフサイクルスケジューラに関する設定です。
type SchedulerConfig struct {
	Enabled         *bool `yaml:"enabled"`
	IntervalMinutes int   `yaml:"interval_minutes"`
	WeeklyWeekday   *int  `yaml:"weekly_weekday"`
	WeeklyHour      *int  `yaml:"weekly_hour"`
	WeeklyMinute    int   `yaml:"weekly_minute"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

const (
	defaultIntervalMinutes = 60
	defaultWeeklyWeekday   = 1 // 月曜
	defaultWeeklyHour      = 9
)

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Scheduler.validateAndNormalize(); err != nil {
		return err
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (s *SchedulerConfig) validateAndNormalize() error {
	if s.Enabled == nil {
		enabled := true
		s.Enabled = &enabled
	}

	if s.IntervalMinutes < 0 {
		return fmt.Errorf("config: scheduler.interval_minutes must not be negative")
	}
	if s.IntervalMinutes == 0 {
		s.IntervalMinutes = defaultIntervalMinutes
	}

	if s.WeeklyWeekday == nil {
		weekday := defaultWeeklyWeekday
		s.WeeklyWeekday = &weekday
	}
	if *s.WeeklyWeekday < 0 || *s.WeeklyWeekday > 6 {
		return fmt.Errorf("config: scheduler.weekly_weekday must be between 0 and 6")
	}

	if s.WeeklyHour == nil {
		hour := defaultWeeklyHour
		s.WeeklyHour = &hour
	}
	if *s.WeeklyHour < 0 || *s.WeeklyHour > 23 {
		return fmt.Errorf("config: scheduler.weekly_hour must be between 0 and 23")
	}

	if s.WeeklyMinute < 0 || s.WeeklyMinute > 59 {
		return fmt.Errorf("config: scheduler.weekly_minute must be between 0 and 59")
	}

	return nil
}

// IsEnabled はタイマー登録が許可されているかどうかを返します。
func (s SchedulerConfig) IsEnabled() bool {
	return s.Enabled != nil && *s.Enabled
}

// Interval は短周期チェックの実行間隔を返します。
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}
