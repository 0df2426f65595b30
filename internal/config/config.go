package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/dragdrop/internal/errors"
	"github.com/vango-dev/dragdrop/pkg/dom"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dragd.json"

	DefaultAddress        = ":8080"
	DefaultBufferSize     = 4096
	DefaultReadTimeout    = "60s"
	DefaultMaxMessageSize = 64 * 1024
	DefaultMoveBurst      = 60
	DefaultPage           = "index.html"
	DefaultDraggable      = ".draggable"
	DefaultContainer      = "body"
	DefaultDroppable      = ".droppable"
	DefaultDeadZone       = 3.0
	DefaultTopZIndex      = 9999
	DefaultJournalPrefix  = "drags"
	DefaultFlushInterval  = "30s"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogMaxSize     = 100
	DefaultLogMaxBackups  = 5
	DefaultLogMaxAge      = 28
)

// Config represents the complete dragd.json configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Page    string        `json:"page,omitempty"`
	Drag    DragConfig    `json:"drag"`
	Journal JournalConfig `json:"journal"`
	Log     LogConfig     `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP and WebSocket settings.
type ServerConfig struct {
	// Address is the listen address (host:port).
	Address string `json:"address,omitempty"`

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int `json:"readBufferSize,omitempty"`
	WriteBufferSize int `json:"writeBufferSize,omitempty"`

	// ReadTimeout closes connections idle for longer (e.g., "60s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// MaxMessageSize caps a single client message in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// MoveRate and MoveBurst limit pointer moves per session. A zero
	// MoveRate leaves moves unlimited.
	MoveRate  float64 `json:"moveRate,omitempty"`
	MoveBurst int     `json:"moveBurst,omitempty"`
}

// DragConfig configures the drag controller of every session.
type DragConfig struct {
	Draggable string `json:"draggable,omitempty"`
	Container string `json:"container,omitempty"`
	Droppable string `json:"droppable,omitempty"`

	// DeadZone is a pointer so an explicit 0 survives defaulting.
	DeadZone  *float64 `json:"deadZone,omitempty"`
	TopZIndex int      `json:"topZIndex,omitempty"`
}

// JournalConfig configures where finished drags are recorded. Region and
// credentials not set here come from the AWS configuration chain.
type JournalConfig struct {
	Bucket        string `json:"bucket,omitempty"`
	Prefix        string `json:"prefix,omitempty"`
	Region        string `json:"region,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
	PathStyle     bool   `json:"pathStyle,omitempty"`
	FlushInterval string `json:"flushInterval,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`

	// File, when set, also writes JSON logs to a rotated file.
	File       string `json:"file,omitempty"`
	MaxSize    int    `json:"maxSize,omitempty"`    // megabytes
	MaxBackups int    `json:"maxBackups,omitempty"` // rotated files kept
	MaxAge     int    `json:"maxAge,omitempty"`     // days
	Compress   bool   `json:"compress,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dragd.json in the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				Wrap(err).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		e := errors.New("E102").Wrap(err)
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntax):
			line, col := position(data, syntax.Offset)
			e.WithLocation(path, line, col)
		case stderrors.As(err, &typeErr):
			line, col := position(data, typeErr.Offset)
			e.WithLocation(path, line, col)
		default:
			e.WithSuggestion("Check " + filepath.Base(path) + " for misspelled keys")
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	if col < 1 {
		col = 1
	}
	return line, col
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E105").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E105").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = DefaultBufferSize
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = DefaultBufferSize
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Server.MoveBurst == 0 {
		c.Server.MoveBurst = DefaultMoveBurst
	}

	if c.Page == "" {
		c.Page = DefaultPage
	}

	if c.Drag.Draggable == "" {
		c.Drag.Draggable = DefaultDraggable
	}
	if c.Drag.Container == "" {
		c.Drag.Container = DefaultContainer
	}
	if c.Drag.Droppable == "" {
		c.Drag.Droppable = DefaultDroppable
	}
	if c.Drag.DeadZone == nil {
		dz := DefaultDeadZone
		c.Drag.DeadZone = &dz
	}
	if c.Drag.TopZIndex == 0 {
		c.Drag.TopZIndex = DefaultTopZIndex
	}

	if c.Journal.Prefix == "" {
		c.Journal.Prefix = DefaultJournalPrefix
	}
	if c.Journal.FlushInterval == "" {
		c.Journal.FlushInterval = DefaultFlushInterval
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.File != "" {
		if c.Log.MaxSize == 0 {
			c.Log.MaxSize = DefaultLogMaxSize
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = DefaultLogMaxBackups
		}
		if c.Log.MaxAge == 0 {
			c.Log.MaxAge = DefaultLogMaxAge
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.ReadTimeout(); err != nil {
		return invalid("server.readTimeout", err)
	}
	if c.Server.MaxMessageSize < 0 {
		return invalid("server.maxMessageSize", fmt.Errorf("must not be negative, got %d", c.Server.MaxMessageSize))
	}
	if c.Server.ReadBufferSize < 0 || c.Server.WriteBufferSize < 0 {
		return invalid("server buffer sizes", fmt.Errorf("must not be negative"))
	}
	if c.Server.MoveRate < 0 || c.Server.MoveBurst < 0 {
		return invalid("server.moveRate", fmt.Errorf("rate and burst must not be negative"))
	}

	for _, sel := range []struct{ key, value string }{
		{"drag.draggable", c.Drag.Draggable},
		{"drag.container", c.Drag.Container},
		{"drag.droppable", c.Drag.Droppable},
	} {
		if _, err := dom.Compile(sel.value); err != nil {
			return errors.New("E402").
				Wrap(err).
				WithDetail(sel.key + " must be a selector such as \".card\" or \"ul > li\"")
		}
	}
	if dz := c.DeadZone(); dz < 0 {
		return invalid("drag.deadZone", fmt.Errorf("must not be negative, got %g", dz))
	}

	if _, err := c.FlushInterval(); err != nil {
		return invalid("journal.flushInterval", err)
	}

	if _, err := c.LogLevel(); err != nil {
		return invalid("log.level", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", fmt.Errorf("want \"text\" or \"json\", got %q", c.Log.Format))
	}
	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		return invalid("log rotation", fmt.Errorf("must not be negative"))
	}
	return nil
}

func invalid(key string, err error) *errors.Error {
	return errors.New("E103").Wrap(err).WithDetail("Setting: " + key)
}

// ReadTimeout parses server.readTimeout.
func (c *Config) ReadTimeout() (time.Duration, error) {
	return parsePositiveDuration(c.Server.ReadTimeout)
}

// FlushInterval parses journal.flushInterval.
func (c *Config) FlushInterval() (time.Duration, error) {
	return parsePositiveDuration(c.Journal.FlushInterval)
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// DeadZone returns the configured dead zone.
func (c *Config) DeadZone() float64 {
	if c.Drag.DeadZone == nil {
		return DefaultDeadZone
	}
	return *c.Drag.DeadZone
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, err
	}
	return level, nil
}

// PagePath returns the page path, resolved against the config directory.
func (c *Config) PagePath() string {
	if filepath.IsAbs(c.Page) {
		return c.Page
	}
	return filepath.Join(c.Dir(), c.Page)
}

// JournalEnabled reports whether drags are shipped to S3.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
