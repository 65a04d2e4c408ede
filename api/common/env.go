package common

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// lookupEnv finds key in the environment, or reads the file named by
// key+"_FILE". The second return is false if neither is set.
func lookupEnv(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	if path, ok := os.LookupEnv(key + "_FILE"); ok {
		dat, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"environment_key": key, "file": path}).Warn("Could not read env file, using default")
			return "", false
		}
		return strings.TrimSpace(string(dat)), true
	}
	return "", false
}

// GetEnv looks up a key under its name in env or name+_FILE to read the value
// from a file. fallback will be defaulted to if a value is not found.
func GetEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. A value that does not parse is fatal.
func GetEnvInt(key string, fallback int) int {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"string": value, "environment_key": key}).Fatal("Failed to convert string to int")
	}
	return i
}

// GetEnvInt64 is GetEnv for 64 bit integers, used for byte sizes.
func GetEnvInt64(key string, fallback int64) int64 {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"string": value, "environment_key": key}).Fatal("Failed to convert string to int64")
	}
	return i
}

// GetEnvFloat is GetEnv for floats.
func GetEnvFloat(key string, fallback float64) float64 {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"string": value, "environment_key": key}).Fatal("Failed to convert string to float")
	}
	return f
}

// GetEnvDuration looks up a key under its name in env or name+_FILE to read
// the value from a file. fallback will be defaulted to if a value is not
// found. if an integer is provided, the value will be returned in seconds
// (value * time.Second)
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	res, err := time.ParseDuration(value)
	if err == nil {
		return res
	}
	s, perr := strconv.Atoi(value)
	if perr != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"duration_string": value, "environment_key": key}).Fatal("Failed to parse duration from env")
	}
	return time.Duration(s) * time.Second
}
