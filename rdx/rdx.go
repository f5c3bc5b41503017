package rdx

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"), // Empty if no password
		DB:       0,                           // Default DB
	})
}

// RdxSet stores a value with no expiry.
func RdxSet(key, value string) error {
	return Conn.Set(ctx(), key, value, 0).Err()
}

// SetWithExpiry stores a value with a TTL.
func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(ctx(), key, value, ttl).Err()
}
