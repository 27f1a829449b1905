package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactedText replaces credentials in logged connection strings.
const RedactedText = "[REDACTED]"

var (
	// user:pass@ prefix of MySQL DSNs (user:pass@tcp(host)/db)
	userPassPattern = regexp.MustCompile(`^([^:/@]+):[^@/]*@`)
	urlCredsPattern = regexp.MustCompile(`://[^:/@]+:[^@]+@`)
	passwordParam   = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)
)

// New builds a logger. format is "json" or "console"; level is any zap level
// name.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// SanitizeDSN removes credentials from a connection string before logging.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	s := urlCredsPattern.ReplaceAllString(dsn, "://"+RedactedText+"@")
	s = userPassPattern.ReplaceAllString(s, RedactedText+"@")
	return passwordParam.ReplaceAllString(s, "${1}="+RedactedText)
}
