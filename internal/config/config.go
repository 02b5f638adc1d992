package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           string
	PublicURL      string
	StartingPoints int
	CodeLength     int
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "5000")
	c.PublicURL = getenv("PUBLIC_URL", "http://localhost:5000")
	c.StartingPoints = getint("STARTING_POINTS", 100)
	c.CodeLength = getint("ROOM_CODE_LENGTH", 6)
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
