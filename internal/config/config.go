package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App      App      `mapstructure:",squash"`
	Server   Server   `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
	Meta     Meta     `mapstructure:",squash"`
	Sync     Sync     `mapstructure:",squash"`
	Auth     Auth     `mapstructure:",squash"`
}

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	WriteTimeout    time.Duration `mapstructure:"server_write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"server_shutdown_timeout"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	// o pool precisa comportar as contas em paralelo mais o servidor HTTP
	MaxOpenConns    int           `mapstructure:"database_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"database_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"database_conn_max_lifetime"`
}

// Meta agrupa a configuração da plataforma externa e dos seus limites de chamada
type Meta struct {
	BaseURL            string        `mapstructure:"meta_base_url"`
	URL                string        `mapstructure:"-"`
	Version            string        `mapstructure:"meta_version"`
	AppID              string        `mapstructure:"meta_app_id"`
	AppSecret          string        `mapstructure:"meta_app_secret"`
	RequestTimeout     time.Duration `mapstructure:"meta_request_timeout"`
	PageLimit          int           `mapstructure:"meta_page_limit"`
	MaxBatchSize       int           `mapstructure:"meta_max_batch_size"`
	MaxConcurrentCalls int           `mapstructure:"meta_max_concurrent_calls"`
	MinCallInterval    time.Duration `mapstructure:"meta_min_call_interval"`
}

type Sync struct {
	Enabled               bool          `mapstructure:"sync_enabled"`
	MaxConcurrentAccounts int           `mapstructure:"sync_max_concurrent_accounts"`
	AnalyticsBatchSize    int           `mapstructure:"sync_analytics_batch_size"`
	AnalyticsLookbackDays int           `mapstructure:"sync_analytics_lookback_days"`
	ReconcileAfterSync    bool          `mapstructure:"sync_reconcile_after_sync"`
	TokenRefreshWindow    time.Duration `mapstructure:"sync_token_refresh_window"`
	TokenRefreshInterval  time.Duration `mapstructure:"sync_token_refresh_interval"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	// a reconciliação manual responde de forma síncrona
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "2m")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_sync?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")
	viper.SetDefault("META_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("META_PAGE_LIMIT", 100)         // itens por página
	viper.SetDefault("META_MAX_BATCH_SIZE", 50)      // ids por chamada de listagem
	viper.SetDefault("META_MAX_CONCURRENT_CALLS", 4) // chamadas simultâneas na plataforma
	viper.SetDefault("META_MIN_CALL_INTERVAL", "250ms")

	viper.SetDefault("SYNC_ENABLED", true)
	viper.SetDefault("SYNC_MAX_CONCURRENT_ACCOUNTS", 3)
	viper.SetDefault("SYNC_ANALYTICS_BATCH_SIZE", 20)
	viper.SetDefault("SYNC_ANALYTICS_LOOKBACK_DAYS", 365)
	viper.SetDefault("SYNC_RECONCILE_AFTER_SYNC", true)
	viper.SetDefault("SYNC_TOKEN_REFRESH_WINDOW", "72h")
	viper.SetDefault("SYNC_TOKEN_REFRESH_INTERVAL", "6h")

	viper.SetDefault("AUTH_SECRET", "your_secret_key")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate garante limites mínimos para os valores usados pela sincronização
func (c *Config) Validate() error {
	if c.Meta.MaxConcurrentCalls < 1 {
		return fmt.Errorf("config: META_MAX_CONCURRENT_CALLS deve ser >= 1, recebido %d", c.Meta.MaxConcurrentCalls)
	}
	if c.Meta.MaxBatchSize < 1 {
		return fmt.Errorf("config: META_MAX_BATCH_SIZE deve ser >= 1, recebido %d", c.Meta.MaxBatchSize)
	}
	if c.Meta.PageLimit < 1 {
		return fmt.Errorf("config: META_PAGE_LIMIT deve ser >= 1, recebido %d", c.Meta.PageLimit)
	}
	if c.Meta.MinCallInterval < 0 {
		return fmt.Errorf("config: META_MIN_CALL_INTERVAL não pode ser negativo")
	}
	if c.Sync.MaxConcurrentAccounts < 1 {
		c.Sync.MaxConcurrentAccounts = 1
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxOpenConns <= c.Sync.MaxConcurrentAccounts {
		return fmt.Errorf("config: DATABASE_MAX_OPEN_CONNS (%d) deve ser maior que SYNC_MAX_CONCURRENT_ACCOUNTS (%d)",
			c.Database.MaxOpenConns, c.Sync.MaxConcurrentAccounts)
	}
	if c.Sync.AnalyticsBatchSize < 1 {
		return fmt.Errorf("config: SYNC_ANALYTICS_BATCH_SIZE deve ser >= 1, recebido %d", c.Sync.AnalyticsBatchSize)
	}
	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
