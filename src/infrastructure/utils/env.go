package utils

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func GetEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	value := GetEnv(key, "")
	if value == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func GetEnvBool(key string, defaultVal bool) bool {
	value := GetEnv(key, "")
	if value == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// GetEnvDuration accepts Go duration strings ("90s", "5m") or plain seconds.
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value := GetEnv(key, "")
	if value == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

var phoneRegexp = regexp.MustCompile(`^\+?[0-9\s\-()]{8,20}$`)

func IsPhoneNumber(value string) bool {
	return phoneRegexp.MatchString(strings.TrimSpace(value))
}
