package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "signing secret is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "") {
			errs = append(errs, ValidationError{Field: "DATABASE_URL", Message: "DATABASE_URL or DB_HOST and DB_NAME are required"})
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not supported in production"})
		}
		if cfg.DatabaseURL == "" && cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "DB_PATH is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageDriver {
	case "local":
		if cfg.UploadDir == "" {
			errs = append(errs, ValidationError{Field: "UPLOAD_DIR", Message: "upload directory is required"})
		}
	case "s3":
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.StorageDriver)})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{Field: "TOKEN_TTL", Message: "must be positive"})
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{Field: "MAX_UPLOAD_BYTES", Message: "must be positive"})
	}

	if len(errs) > 0 {
		lines := make([]string, 0, len(errs))
		for _, e := range errs {
			lines = append(lines, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}
