// Package env holds the tiny environment helpers needed before config is
// loaded.
package env

import "os"

// Get reads an environment variable, falling back when it is unset or
// blank.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
