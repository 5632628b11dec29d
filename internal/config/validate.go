package config

import "errors"

func ValidateForRun(cfg *Config) error {
	if cfg.TaskStoreURL == "" {
		return errors.New("TASK_STORE_URL environment variable is required")
	}
	return nil
}
