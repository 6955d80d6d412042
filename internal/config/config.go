package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const placeholderDBPassword = "your_password_here"

type DBConfig struct {
	Host         string        `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port         int           `env:"DB_PORT" envDefault:"5432"`
	Name         string        `env:"DB_NAME" envDefault:"mygamedb"`
	User         string        `env:"DB_USER" envDefault:"postgres"`
	Password     string        `env:"DB_PASSWORD"`
	SSLMode      string        `env:"DB_SSLMODE" envDefault:"disable"`
	MinConns     int           `env:"DB_MIN_CONN" envDefault:"1"`
	MaxConns     int           `env:"DB_MAX_CONN" envDefault:"10"`
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
}

type ServerConfig struct {
	Host      string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port      int    `env:"SERVER_PORT" envDefault:"8000"`
	Debug     bool   `env:"SERVER_DEBUG" envDefault:"false"`
	PublicURL string `env:"PUBLIC_URL"`

	// TrustForwarded takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustForwarded bool `env:"TRUST_FORWARDED" envDefault:"false"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type SecurityConfig struct {
	AdminToken    string `env:"ADMIN_TOKEN"`
	EnableAuth    bool   `env:"ENABLE_AUTH" envDefault:"false"`
	EnableBasic   bool   `env:"ENABLE_BASIC_AUTH" envDefault:"false"`
	AdminUser     string `env:"ADMIN_USER"`
	AdminPass     string `env:"ADMIN_PASS"`
	SessionSecret string `env:"SESSION_SECRET"`
}

type GameConfig struct {
	AssetsServer     string `env:"ASSETS_SERVER" envDefault:"http://127.0.0.1:8000/mygame/"`
	AssetsDir        string `env:"ASSETS_DIR" envDefault:"./mygame"`
	HotUpdateEnabled bool   `env:"HOT_UPDATE_ENABLED" envDefault:"true"`
}

type RateLimitConfig struct {
	Window         time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
	PaySubmitLimit int           `env:"PAY_SUBMIT_LIMIT" envDefault:"60"`
	PayStatusLimit int           `env:"PAY_STATUS_LIMIT" envDefault:"120"`
	AdminLimit     int           `env:"ADMIN_RATE_LIMIT" envDefault:"120"`
	GrantLimit     int           `env:"GRANT_RATE_LIMIT" envDefault:"60"`
}

type Config struct {
	DatabaseURI  string `env:"DATABASE_URI"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"INFO"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"1000000"`
	NotifyURL    string `env:"NOTIFY_URL"`

	DB        DBConfig
	Server    ServerConfig
	Security  SecurityConfig
	Game      GameConfig
	RateLimit RateLimitConfig
}

type flags struct {
	envFile string
	host    string
	port    int
	debug   bool
}

// NewConfig reads the optional .env file, then the environment, then lets
// command line flags override both.
func NewConfig(args []string) (Config, error) {
	f, err := parseFlags(args)
	if err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(f.envFile); err != nil {
		return Config{}, err
	}

	config := Config{}

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	config.applyFlags(f)

	// Sessions signed with a per-process secret do not survive a restart.
	if config.Security.SessionSecret == "" {
		config.Security.SessionSecret = uuid.NewString() + uuid.NewString()
	}

	if err := config.validateConfig(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("mygameserver", flag.ContinueOnError)
	fs.StringVar(&f.envFile, "env", ".env", "Environment file path")
	fs.StringVar(&f.host, "host", "", "Server host")
	fs.IntVar(&f.port, "port", 0, "Server port")
	fs.BoolVar(&f.debug, "debug", false, "Debug mode")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	return f, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error load env file %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyFlags(f flags) {
	if f.host != "" {
		c.Server.Host = f.host
	}

	if f.port != 0 {
		c.Server.Port = f.port
	}

	if f.debug {
		c.Server.Debug = true
	}
}

func (c *Config) validateConfig() error {
	if c.DB.Password == placeholderDBPassword {
		return errors.New("DB_PASSWORD is not set, copy env.example to .env and edit it")
	}

	for name, port := range map[string]int{"SERVER_PORT": c.Server.Port, "DB_PORT": c.DB.Port} {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %d", name, port)
		}
	}

	if c.DB.MinConns < 0 || c.DB.MaxConns <= 0 || c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("invalid pool bounds: min=%d max=%d", c.DB.MinConns, c.DB.MaxConns)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be > 0")
	}

	if c.RateLimit.Window < time.Second {
		return fmt.Errorf("RATE_WINDOW must be at least 1s")
	}

	if c.Server.PublicURL != "" {
		if _, err := url.ParseRequestURI(c.Server.PublicURL); err != nil {
			return err
		}
	}

	if c.NotifyURL != "" {
		if _, err := url.ParseRequestURI(c.NotifyURL); err != nil {
			return err
		}
	}

	return nil
}

// DSN returns DATABASE_URI when given, otherwise builds one from the DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURI != "" {
		return c.DatabaseURI
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": []string{c.DB.SSLMode}}.Encode(),
	}

	return u.String()
}
