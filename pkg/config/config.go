package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	PayFast  PayFastConfig
	Mail     MailConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.PayFast.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCALPOP_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALPOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALPOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALPOP_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"LOCALPOP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"LOCALPOP_DB_DSN"`

	Host     string `envconfig:"LOCALPOP_DB_HOST"`
	Port     int    `envconfig:"LOCALPOP_DB_PORT" default:"5432"`
	User     string `envconfig:"LOCALPOP_DB_USER"`
	Password string `envconfig:"LOCALPOP_DB_PASSWORD"`
	Name     string `envconfig:"LOCALPOP_DB_NAME"`
	SSLMode  string `envconfig:"LOCALPOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALPOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALPOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALPOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALPOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALPOP_REDIS_URL"`
	Address      string        `envconfig:"LOCALPOP_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALPOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALPOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALPOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALPOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALPOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALPOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALPOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOCALPOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOCALPOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOCALPOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOCALPOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOCALPOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOCALPOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOCALPOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOCALPOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOCALPOP_ARGON_KEY_LEN" default:"32"`
}

// PayFastConfig carries the merchant credentials and the fixed URLs exchanged
// with the gateway. Loaded once at startup; a missing merchant credential or
// notify URL aborts boot rather than letting the service emit unsigned forms.
type PayFastConfig struct {
	MerchantID  string `envconfig:"LOCALPOP_PAYFAST_MERCHANT_ID" required:"true"`
	MerchantKey string `envconfig:"LOCALPOP_PAYFAST_MERCHANT_KEY" required:"true"`
	Passphrase  string `envconfig:"LOCALPOP_PAYFAST_PASSPHRASE"`
	ProcessURL  string `envconfig:"LOCALPOP_PAYFAST_PROCESS_URL" default:"https://www.payfast.co.za/eng/process"`
	ReturnURL   string `envconfig:"LOCALPOP_PAYFAST_RETURN_URL" required:"true"`
	CancelURL   string `envconfig:"LOCALPOP_PAYFAST_CANCEL_URL" required:"true"`
	NotifyURL   string `envconfig:"LOCALPOP_PAYFAST_NOTIFY_URL" required:"true"`
}

func (p PayFastConfig) validate() error {
	for name, raw := range map[string]string{
		"process": p.ProcessURL,
		"return":  p.ReturnURL,
		"cancel":  p.CancelURL,
		"notify":  p.NotifyURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("payfast %s url %q is not absolute", name, raw)
		}
	}
	return nil
}

type MailConfig struct {
	SendgridAPIKey string        `envconfig:"LOCALPOP_SENDGRID_API_KEY" required:"true"`
	FromAddress    string        `envconfig:"LOCALPOP_MAIL_FROM_ADDRESS" required:"true"`
	FromName       string        `envconfig:"LOCALPOP_MAIL_FROM_NAME" default:"LocalPop"`
	PollInterval   time.Duration `envconfig:"LOCALPOP_MAIL_POLL_INTERVAL" default:"5s"`
	BatchSize      int           `envconfig:"LOCALPOP_MAIL_BATCH_SIZE" default:"20"`
	MaxAttempts    int           `envconfig:"LOCALPOP_MAIL_MAX_ATTEMPTS" default:"8"`
	SendTimeout    time.Duration `envconfig:"LOCALPOP_MAIL_SEND_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
