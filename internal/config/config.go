package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site       SiteConfig       `yaml:"site" toml:"site"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Content    ContentConfig    `yaml:"content" toml:"content"`
	Storage    StorageConfig    `yaml:"storage" toml:"storage"`
	Markdown   MarkdownConfig   `yaml:"markdown" toml:"markdown"`
	Theme      ThemeConfig      `yaml:"theme" toml:"theme"`
	Navigation NavigationConfig `yaml:"navigation" toml:"navigation"`
	Meta       MetaConfig       `yaml:"meta" toml:"meta"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" default:"info"`
	Format string `yaml:"format" toml:"format" default:"console"`
}

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var LogFormats = []string{LogFormatConsole, LogFormatJSON}

type SiteConfig struct {
	Name        string `yaml:"name" toml:"name" default:"Susquehanna Valley Mesh"`
	Description string `yaml:"description" toml:"description" default:"A community group connecting the Susquehanna Valley with low-power, long-range radio devices"`
	Tagline     string `yaml:"tagline" toml:"tagline" default:"We mesh well together."`
}

type ServerConfig struct {
	Host         string        `yaml:"host" toml:"host" default:"0.0.0.0"`
	Port         string        `yaml:"port" toml:"port" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" default:"30s"`
	HSTS         bool          `yaml:"hsts" toml:"hsts" default:"false"`
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ContentConfig controls how the site consumes the content API.
type ContentConfig struct {
	// APIBaseURL is where the site fetches listings and files from.
	// Empty means this server, reached over loopback.
	APIBaseURL       string        `yaml:"api_base_url" toml:"api_base_url" default:""`
	RecentUpdates    int           `yaml:"recent_updates" toml:"recent_updates" default:"3"`
	FetchConcurrency int           `yaml:"fetch_concurrency" toml:"fetch_concurrency" default:"4"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout" toml:"fetch_timeout" default:"10s"`
	FetchRetries     int           `yaml:"fetch_retries" toml:"fetch_retries" default:"2"`

	// WatchInterval is how often storage is polled for changed files to
	// push live reloads to open pages. Zero disables watching.
	WatchInterval time.Duration `yaml:"watch_interval" toml:"watch_interval" default:"10s"`
}

type StorageConfig struct {
	Backend string       `yaml:"backend" toml:"backend" default:"fs"`
	Path    string       `yaml:"path" toml:"path" default:"content"`
	SQLite  SQLiteConfig `yaml:"sqlite" toml:"sqlite"`
	S3      S3Config     `yaml:"s3" toml:"s3"`
}

type SQLiteConfig struct {
	Path        string `yaml:"path" toml:"path" default:"content.db"`
	Compression string `yaml:"compression" toml:"compression" default:"zstd"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" toml:"bucket" default:""`
	Prefix   string `yaml:"prefix" toml:"prefix" default:"content/"`
	Endpoint string `yaml:"endpoint" toml:"endpoint" default:""`
	Region   string `yaml:"region" toml:"region" default:"auto"`
}

type MarkdownConfig struct {
	Renderer string `yaml:"renderer" toml:"renderer" default:"mmark"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" toml:"default" default:"light-theme"`
	AllowSwitching     bool         `yaml:"allow_switching" toml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting" toml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" toml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" toml:"default_light" default:"github"`
}

// NavigationConfig lists the page names linked from the header menu.
type NavigationConfig struct {
	Pages []string `yaml:"pages" toml:"pages" default:"getting-started"`
}

type MetaConfig struct {
	Author   string   `yaml:"author" toml:"author" default:""`
	Keywords []string `yaml:"keywords" toml:"keywords" default:"meshtastic,mesh,lora,susquehanna valley"`
	Favicon  string   `yaml:"favicon" toml:"favicon" default:"/static/favicon.svg"`
}

var AppConfig *Config

// Load reads the configuration at path on top of the defaults. A missing
// file is not an error. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return config, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func LoadConfig(path string) error {
	config, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = config
	return nil
}

// Default returns a configuration holding only default values.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if !slices.Contains(StorageBackends, c.Storage.Backend) {
		return fmt.Errorf("unsupported storage backend %q (want one of %s)", c.Storage.Backend, strings.Join(StorageBackends, ", "))
	}
	if !slices.Contains(MarkdownRenderers, c.Markdown.Renderer) {
		return fmt.Errorf("unsupported markdown renderer %q (want one of %s)", c.Markdown.Renderer, strings.Join(MarkdownRenderers, ", "))
	}
	if !slices.Contains(Compressions, c.Storage.SQLite.Compression) {
		return fmt.Errorf("unsupported sqlite compression %q (want one of %s)", c.Storage.SQLite.Compression, strings.Join(Compressions, ", "))
	}
	if !slices.Contains(LogFormats, c.Logging.Format) {
		return fmt.Errorf("unsupported log format %q (want one of %s)", c.Logging.Format, strings.Join(LogFormats, ", "))
	}
	if c.Storage.Backend == StorageS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
	}
	if c.Content.RecentUpdates < 0 {
		return fmt.Errorf("content.recent_updates must not be negative")
	}
	if c.Content.WatchInterval < 0 {
		return fmt.Errorf("content.watch_interval must not be negative")
	}
	if c.Content.FetchConcurrency < 1 {
		return fmt.Errorf("content.fetch_concurrency must be at least 1")
	}
	return nil
}

// ContentBaseURL is the base URL the site uses to reach the content API.
func (c *Config) ContentBaseURL() string {
	if c.Content.APIBaseURL != "" {
		return strings.TrimRight(c.Content.APIBaseURL, "/")
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, c.Server.Port)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Int64:
			if field.Type() == durationType {
				if val, err := time.ParseDuration(defaultValue); err == nil {
					field.SetInt(int64(val))
				}
			} else if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
