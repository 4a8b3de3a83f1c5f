package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends suportados para o catálogo.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

// Config armazena todas as configurações do painel de administração do catálogo.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	// Backend do catálogo (REST remoto ou PostgreSQL direto)
	CatalogBackend    string
	CatalogAPIURL     string
	CatalogAPITimeout time.Duration
	DatabaseURL       string
	DBTimeout         time.Duration

	// Sessão (Redis + JWT)
	RedisAddr         string
	JWTSecretKey      string
	TokenExpiry       time.Duration
	AdminEmail        string
	AdminPasswordHash string
	AdminSessionID    string

	// Hospedagem de imagens
	UploadURL      string
	UploadPreset   string
	UploadTimeout  time.Duration
	UploadMaxBytes int64

	// Notificações
	NotificationBuffer int

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// O .env, quando existe, já foi carregado pelo godotenv no cmd/.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),

		// 2. Backend do catálogo
		CatalogBackend:    strings.ToLower(getEnv("CATALOG_BACKEND", BackendHTTP)),
		CatalogAPIURL:     getEnv("CATALOG_API_URL", "http://localhost:5000/api"),
		CatalogAPITimeout: getDurationEnv("CATALOG_API_TIMEOUT_SEC", 10) * time.Second,
		DBTimeout:         getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Sessão
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecretKey:      mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:       getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminSessionID:    getEnv("ADMIN_SESSION_ID", ""),

		// 4. Hospedagem de imagens
		UploadURL:      getEnv("UPLOAD_URL", "https://api.cloudinary.com/v1_1/demo/image/upload"),
		UploadPreset:   getEnv("UPLOAD_PRESET", "instagramimages"),
		UploadTimeout:  getDurationEnv("UPLOAD_TIMEOUT_SEC", 30) * time.Second,
		UploadMaxBytes: int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20)),

		// 5. Notificações
		NotificationBuffer: getIntEnv("NOTIFICATION_BUFFER", 50),

		// 6. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
	}

	switch cfg.CatalogBackend {
	case BackendPostgres:
		// Só exigimos credenciais de DB quando o backend direto está em uso
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case BackendHTTP:
		cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	default:
		log.Fatalf("❌ Erro de Configuração: CATALOG_BACKEND inválido (%q). Use %q ou %q.", cfg.CatalogBackend, BackendHTTP, BackendPostgres)
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
