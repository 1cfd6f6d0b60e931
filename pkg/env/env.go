package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	// Public HTTPS base for webhook callback URLs. When empty, the
	// request Host header is used instead.
	PublicBaseURL string

	CORSAllowedOrigins string

	// Comma-separated identity=number pairs, e.g.
	// "janice@glive.ca=+14506001665,sandra@glive.ca=+14155552672"
	AgentDirectory string

	// Spoken apology for calls with no route
	VoiceLanguage  string
	NoRouteMessage string

	TwilioAccountSID        string
	TwilioAuthToken         string
	TwilioAPIKeySID         string
	TwilioAPIKeySecret      string
	TwiMLAppSID             string
	TwilioValidateSignature bool
	TokenTTLMin             int

	HubSpotBaseURL     string
	HubSpotAccessToken string
	HubSpotTimeoutMs   int

	RedisURL string

	// Optional: when set, agents are also loaded from the "agents"
	// collection at startup
	MongoURI string
	DBName   string

	OTELEndpoint string
	OTELEnabled  bool
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// Try to load .env file, but don't fail if it doesn't exist
		// so the app can run on environment variables alone
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "https://app.hubspot.com"),

		AgentDirectory: getEnv("AGENT_DIRECTORY", ""),

		VoiceLanguage:  getEnv("VOICE_LANGUAGE", "fr-FR"),
		NoRouteMessage: getEnv("NO_ROUTE_MESSAGE", "Personne n'est disponible pour prendre cet appel."),

		TwilioAccountSID:        getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:         getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioAPIKeySID:         getEnv("TWILIO_API_KEY_SID", ""),
		TwilioAPIKeySecret:      getEnv("TWILIO_API_KEY_SECRET", ""),
		TwiMLAppSID:             getEnv("TWIML_APP_SID", ""),
		TwilioValidateSignature: getEnvBool("TWILIO_VALIDATE_SIGNATURE", false),
		TokenTTLMin:             getEnvInt("TOKEN_TTL_MIN", 60),

		HubSpotBaseURL:     getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
		HubSpotAccessToken: getEnv("HUBSPOT_API_KEY", ""),
		HubSpotTimeoutMs:   getEnvInt("HUBSPOT_TIMEOUT_MS", 5000),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		MongoURI: getEnv("MONGO_URI", ""),
		DBName:   getEnv("DB_NAME", "callbridge"),

		OTELEndpoint: getEnv("OTEL_ENDPOINT", ""),
		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}
