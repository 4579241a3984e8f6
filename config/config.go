package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	Wallet     WalletConfig
	Redis      RedisConfig
	Mail       MailConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

const (
	DriverMySQL     = "mysql"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// Watch starts the Firestore snapshot listeners.
	Watch bool
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	// HotspotSecret signs the access tokens handed out on payment approval.
	HotspotSecret string
	Issuer        string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	// CredentialsBase64 takes precedence over CredentialsFile.
	CredentialsBase64 string
}

type WalletConfig struct {
	BaseURL      string
	ContentDir   string
	ReceiptDir   string
	Mock         bool
	TemplateDir  string
	CertPath     string
	CertPassword string
	WWDRPath     string
	TeamID       string
	PassTypeID   string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DedupEnabled bool
	DedupTTL     time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type AdminConfig struct {
	Email        string
	PasswordHash string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level string
	JSON  bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", "*")

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.dsn", "root:@tcp(localhost:3306)/hotspot?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.watch", true)

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", 12*time.Hour)
	v.SetDefault("jwt.hotspot_secret", "change-me-hotspot")
	v.SetDefault("jwt.issuer", "wifi-zone")

	v.SetDefault("cloudinary.folder", "receipts")

	v.SetDefault("wallet.base_url", "http://localhost:3001")
	v.SetDefault("wallet.content_dir", "public/passes")
	v.SetDefault("wallet.receipt_dir", "public/receipts")
	v.SetDefault("wallet.template_dir", "templates/wifi.pass")
	v.SetDefault("wallet.cert_path", "certs/pass.p12")
	v.SetDefault("wallet.wwdr_path", "certs/wwdr.pem")
	v.SetDefault("wallet.pass_type_id", "pass.com.wifizone.card")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.dedup_ttl", 24*time.Hour)

	v.SetDefault("mail.port", 587)

	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("log.level", "info")
}

// Load reads .env, an optional CONFIG_FILE and the environment. Keys map to
// env vars by upper-casing and replacing dots, e.g. wallet.base_url is
// WALLET_BASE_URL.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("[config] config file %s not read: %v", file, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			Env:             v.GetString("server.env"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			AllowedOrigins:  splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			Watch:           v.GetBool("database.watch"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("jwt.access_secret"),
			AccessExpiry:  v.GetDuration("jwt.access_expiry"),
			HotspotSecret: v.GetString("jwt.hotspot_secret"),
			Issuer:        v.GetString("jwt.issuer"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("cloudinary.cloud_name"),
			APIKey:    v.GetString("cloudinary.api_key"),
			APISecret: v.GetString("cloudinary.api_secret"),
			Folder:    v.GetString("cloudinary.folder"),
		},
		Firebase: FirebaseConfig{
			ProjectID:         v.GetString("firebase.project_id"),
			CredentialsFile:   v.GetString("firebase.credentials_file"),
			CredentialsBase64: v.GetString("firebase.credentials_base64"),
		},
		Wallet: WalletConfig{
			BaseURL:      strings.TrimRight(v.GetString("wallet.base_url"), "/"),
			ContentDir:   v.GetString("wallet.content_dir"),
			ReceiptDir:   v.GetString("wallet.receipt_dir"),
			Mock:         v.GetBool("wallet.mock"),
			TemplateDir:  v.GetString("wallet.template_dir"),
			CertPath:     v.GetString("wallet.cert_path"),
			CertPassword: v.GetString("wallet.cert_password"),
			WWDRPath:     v.GetString("wallet.wwdr_path"),
			TeamID:       v.GetString("wallet.team_id"),
			PassTypeID:   v.GetString("wallet.pass_type_id"),
		},
		Redis: RedisConfig{
			Addr:         v.GetString("redis.addr"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			DedupEnabled: v.GetBool("redis.dedup_enabled") || v.GetBool("dedup_enabled"),
			DedupTTL:     v.GetDuration("redis.dedup_ttl"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Admin: AdminConfig{
			Email:        v.GetString("admin.email"),
			PasswordHash: v.GetString("admin.password_hash"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("rate_limit.requests_per_second"),
			Burst:             v.GetInt("rate_limit.burst"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			JSON:  v.GetBool("log.json"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
