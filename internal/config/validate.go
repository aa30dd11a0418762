package config

import (
	"errors"
	"fmt"

	"github.com/craftbridge/craftbridge/internal/core"
)

// Validate checks the structural integrity of a loaded Config:
// a supported version and module IDs that match compiled-in modules.
// Module-level configuration is validated by each module itself during
// the Configure/Provision/Validate lifecycle.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}

	if cfg.Version != "" && cfg.Version != "1" {
		return fmt.Errorf("config: unsupported version %q (expected \"1\")", cfg.Version)
	}

	if len(cfg.Modules) == 0 {
		return errors.New("config: no modules configured")
	}

	var errs []error
	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}
	return errors.Join(errs...)
}
