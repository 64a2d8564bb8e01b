package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Storage   StorageConfig
	Session   SessionConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Outbox    OutboxConfig
	Inventory InventoryConfig
	Bootstrap BootstrapConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// StorageConfig backend de persistencia.
type StorageConfig struct {
	Driver      string // postgres | memory
	AutoMigrate bool   // crear tablas al arrancar
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// SessionConfig cookie de sesión y firma del token.
type SessionConfig struct {
	Secret       string
	CookieName   string
	MaxAge       int // segundos
	Issuer       string
	SecureCookie bool
}

// TTL vigencia del token de sesión.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.MaxAge) * time.Second
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig caché de listados. URL vacía = caché en memoria.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// KafkaConfig publicación de movimientos de stock. Brokers vacío = eventos solo al log.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Enabled indica si hay brokers configurados.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// OutboxConfig relay de eventos pendientes.
type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

// InventoryConfig parámetros de inventario.
type InventoryConfig struct {
	LowStockThreshold int
}

// BootstrapConfig superadmin inicial (opcional).
type BootstrapConfig struct {
	SuperadminEmail    string
	SuperadminPassword string
	SuperadminName     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	secret := getString(v, "SESSION_SECRET", "")
	if secret == "" {
		secret = getString(v, "SECRET_KEY", "")
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "erp-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "erp"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getString(v, "STORAGE_DRIVER", "postgres")),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
		},
		Session: SessionConfig{
			Secret:       secret,
			CookieName:   getString(v, "SESSION_COOKIE", "erp_session"),
			MaxAge:       getInt(v, "SESSION_MAX_AGE", 3600),
			Issuer:       getString(v, "JWT_ISSUER", "erp-api"),
			SecureCookie: getBool(v, "SESSION_SECURE", false),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "*"),
		},
		Redis: RedisConfig{
			URL: getString(v, "REDIS_URL", ""),
			TTL: time.Duration(getInt(v, "CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getString(v, "KAFKA_BROKERS", "")),
			Topic:    getString(v, "KAFKA_TOPIC", "stock-movements"),
			ClientID: getString(v, "KAFKA_CLIENT_ID", "erp-api"),
		},
		Outbox: OutboxConfig{
			Interval:  time.Duration(getInt(v, "OUTBOX_INTERVAL_SECONDS", 5)) * time.Second,
			BatchSize: getInt(v, "OUTBOX_BATCH_SIZE", 100),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: getInt(v, "LOW_STOCK_THRESHOLD", 5),
		},
		Bootstrap: BootstrapConfig{
			SuperadminEmail:    getString(v, "SUPERADMIN_EMAIL", ""),
			SuperadminPassword: getString(v, "SUPERADMIN_PASSWORD", ""),
			SuperadminName:     getString(v, "SUPERADMIN_NAME", "Superadmin"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: STORAGE_DRIVER inválido %q (postgres | memory)", c.Storage.Driver)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("config: SESSION_MAX_AGE debe ser mayor a 0")
	}
	if c.Outbox.Interval <= 0 {
		c.Outbox.Interval = 5 * time.Second
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = 100
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
