package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Filter policies for the CSV vigency predicate. The two schema versions of
// the source spreadsheet use different predicates; the active one is a
// deployment choice.
const (
	// FilterPolicySolicitud keeps rows whose "Solicitud" column is non-empty.
	FilterPolicySolicitud = "solicitud"
	// FilterPolicyVigente keeps rows whose "Estado Mutuo" equals
	// "Vigente"/"Vigentes" (case-insensitive) and reads the seller RUT from
	// the "RUT Ejecutivo" column instead of "Rut Vendedor".
	FilterPolicyVigente = "vigente"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Import     ImportConfig
	Storage    StorageConfig
	MQ         MQConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// ImportConfig tunes the CSV import pipeline.
type ImportConfig struct {
	// MaxFileSize is the upload size cap in bytes.
	MaxFileSize int64
	// FilterPolicy selects the vigency predicate (see FilterPolicy consts).
	FilterPolicy string
	// BcryptCost is the cost for temp passwords of auto-provisioned sellers.
	BcryptCost int
}

// StorageConfig selects and configures the object-storage backend used to
// archive uploaded CSV files. Backend is one of "minio", "gcs" or "none".
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// MQConfig selects and configures the message broker used to publish
// import-completed events. Backend is one of "rabbitmq", "pubsub" or "none".
type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "hipotecario"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "mutuos_db"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	importConfig := ImportConfig{
		MaxFileSize:  int64(getEnvInt("MAX_FILE_SIZE", 10<<20)),
		FilterPolicy: filterPolicy(getEnv("IMPORT_FILTER_POLICY", FilterPolicySolicitud)),
		BcryptCost:   getEnvInt("BCRYPT_ROUNDS", 8),
	}

	storageConfig := StorageConfig{
		Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "import-files"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	mqConfig := MQConfig{
		Backend: strings.ToLower(getEnv("MQ_BACKEND", "none")),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Import:     importConfig,
		Storage:    storageConfig,
		MQ:         mqConfig,
	}
}

func filterPolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case FilterPolicyVigente:
		return FilterPolicyVigente
	default:
		return FilterPolicySolicitud
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return strings.EqualFold(valueStr, "true") || valueStr == "1"
	}
	return defaultValue
}
