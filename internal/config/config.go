package config

import "os"

type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string
	DevAuthorID string
}

// Load reads the environment. Empty DatabaseURL selects the in-memory store;
// empty RedisURL selects the static dev identity with DevAuthorID.
func Load() Config {
	return Config{
		Addr:        getenv("REPLYTHREAD_ADDR", ":8080"),
		DatabaseURL: getenv("DATABASE_URL", ""),
		RedisURL:    getenv("REDIS_URL", ""),
		DevAuthorID: getenv("REPLYTHREAD_DEV_AUTHOR", "dev"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
