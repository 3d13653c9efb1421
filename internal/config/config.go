package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the server's environment-driven runtime configuration. The
// .env file, if present, is loaded by main before this is read.
type Config struct {
	// MaxPlayers caps the slot count per room.
	MaxPlayers int
	// AuthSecret signs operator tokens for the debug REST endpoints.
	// Empty means those endpoints reject everything.
	AuthSecret string
	// IP connection policy.
	IPAllowlist   []string
	IPDenylist    []string
	WhitelistMode bool
	// PublicDir holds the static client assets.
	PublicDir string
}

const defaultMaxPlayers = 8

func FromEnv() Config {
	return Config{
		MaxPlayers:    envInt("MAX_PLAYERS", defaultMaxPlayers),
		AuthSecret:    os.Getenv("AUTH_SECRET"),
		IPAllowlist:   envList("IP_ALLOWLIST"),
		IPDenylist:    envList("IP_DENYLIST"),
		WhitelistMode: envBool("WHITELIST_MODE"),
		PublicDir:     envDefault("PUBLIC_DIR", "public"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
