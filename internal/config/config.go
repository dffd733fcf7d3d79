package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Local auth is optional: a single-user offline install can run open.
	EnableLocalAuth bool
	AdminUser       string
	AdminPassHash   string // bcrypt
	AuthHMACSecret  string

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:        addr,
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", false),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   os.Getenv("ADMIN_PASS_HASH"),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "quizdesk-dev-key"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
