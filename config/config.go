package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	OpenAIApiKey    string
	OpenAIQuizModel string
	OpenAIApiURL    string

	EmailSender string
	Password    string // SMTP Password

	QuizAttemptMaxAgeHours int // pending attempts older than this are swept
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		OpenAIApiKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIQuizModel: getEnv("OPENAI_QUIZ_MODEL", "gpt-4o-mini"),
		OpenAIApiURL:    getEnv("OPENAI_API_URL", "https://api.openai.com/v1/responses"),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		QuizAttemptMaxAgeHours: getEnvInt("QUIZ_ATTEMPT_MAX_AGE_HOURS", 24),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.OpenAIApiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set. Quiz generation will be unavailable.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
