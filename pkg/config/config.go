package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados.
const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Modos de resolución del tenant.
const (
	AuthModeHeader = "header"
	AuthModeJWT    = "jwt"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente .env).
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Store    StoreConfig
	DynamoDB DynamoDBConfig
	DB       DBConfig
	Auth     AuthConfig
	JWT      JWTConfig
	List     ListConfig
	Metrics  MetricsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// IsDevelopment indica si se exponen detalles de diagnóstico en las respuestas.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig elige el almacén de clientes.
type StoreConfig struct {
	Driver  string
	Timeout time.Duration
}

// DynamoDBConfig tabla, índice y región para el almacén DynamoDB.
type DynamoDBConfig struct {
	Table           string
	TenantIndex     string
	Endpoint        string // vacío = endpoint de AWS
	Region          string
	SkipSchemaCheck bool
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
	MinConns    int
	AutoMigrate bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string con la contraseña escapada.
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

// AuthConfig de dónde sale el tenant de cada petición.
type AuthConfig struct {
	Mode         string // header | jwt
	TenantHeader string
}

// JWTConfig configuración de JWT (solo con AUTH_MODE=jwt).
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// ListConfig límites del listado de clientes.
type ListConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// MetricsConfig expone /metrics.
type MetricsConfig struct {
	Enabled bool
}

// Load lee la configuración desde variables de entorno. Un .env en el directorio actual
// se carga primero sin pisar variables ya definidas.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignoramos error si no existe

	v := viper.New()

	// Opcional: config.env / config.yaml en . o ./config
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "fieldservice-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(getString(v, "STORE_DRIVER", StoreDynamoDB)),
			Timeout: time.Duration(getInt(v, "STORE_TIMEOUT_MS", 3000)) * time.Millisecond,
		},
		DynamoDB: DynamoDBConfig{
			Table:           getString(v, "DYNAMODB_TABLE", "customers"),
			TenantIndex:     getString(v, "DYNAMODB_TENANT_INDEX", "tenantId-index"),
			Endpoint:        getString(v, "DYNAMODB_ENDPOINT", ""),
			Region:          getString(v, "AWS_REGION", "us-east-1"),
			SkipSchemaCheck: getBool(v, "DYNAMODB_SKIP_SCHEMA_CHECK", false),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "fieldservice"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			Mode:         strings.ToLower(getString(v, "AUTH_MODE", AuthModeHeader)),
			TenantHeader: getString(v, "AUTH_TENANT_HEADER", "X-Tenant-Id"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "fieldservice-api"),
		},
		List: ListConfig{
			DefaultLimit: getInt(v, "LIST_DEFAULT_LIMIT", 50),
			MaxLimit:     getInt(v, "LIST_MAX_LIMIT", 1000),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa combinaciones inválidas antes de arrancar.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDynamoDB:
		if c.DynamoDB.Table == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE es requerido con STORE_DRIVER=dynamodb"))
		}
		if c.DynamoDB.TenantIndex == "" {
			errs = append(errs, errors.New("DYNAMODB_TENANT_INDEX es requerido con STORE_DRIVER=dynamodb"))
		}
	case StorePostgres:
		if c.DB.DatabaseURL == "" && c.DB.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL o DB_HOST es requerido con STORE_DRIVER=postgres"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER inválido: %q", c.Store.Driver))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT_MS debe ser mayor que 0"))
	}
	switch c.Auth.Mode {
	case AuthModeHeader:
		if c.Auth.TenantHeader == "" {
			errs = append(errs, errors.New("AUTH_TENANT_HEADER no puede estar vacío"))
		}
	case AuthModeJWT:
		if c.JWT.Secret == "" {
			errs = append(errs, errors.New("JWT_SECRET es requerido con AUTH_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE inválido: %q", c.Auth.Mode))
	}
	if c.List.DefaultLimit <= 0 || c.List.MaxLimit <= 0 {
		errs = append(errs, errors.New("LIST_DEFAULT_LIMIT y LIST_MAX_LIMIT deben ser mayores que 0"))
	} else if c.List.DefaultLimit > c.List.MaxLimit {
		errs = append(errs, errors.New("LIST_DEFAULT_LIMIT no puede superar LIST_MAX_LIMIT"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			return def
		}
		return n
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
