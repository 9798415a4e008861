// Package runtimeenv loads project env files and reports credential
// visibility without ever printing secret values.
package runtimeenv

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/doeshing/faultline/internal/domain"
	"github.com/doeshing/faultline/internal/ports"
)

// watchedKeys are the credentials the dashboard surfaces as present/absent.
var watchedKeys = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"REQUIRED_API_KEY",
}

// Reporter implements the EnvReporter port.
type Reporter struct{}

// NewReporter builds a reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// LoadProject loads a .env file if it exists, never overriding variables
// already present in the real environment. A missing file is not an error.
func (r *Reporter) LoadProject(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Status reports which watched keys are set (booleans only).
func (r *Reporter) Status() domain.EnvStatus {
	status := make(domain.EnvStatus, len(watchedKeys))
	for _, key := range watchedKeys {
		status[key] = os.Getenv(key) != ""
	}
	return status
}

var _ ports.EnvReporter = (*Reporter)(nil)
