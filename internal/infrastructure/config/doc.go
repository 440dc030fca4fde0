// Package config handles loading and validating Gray Logic Designer configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (DESIGNER_*)
//   - Validation of required fields
//   - The document defaults stamped into every ROEHN export
//
// Sensitive values (passwords, tokens, the JWT secret) should be set via
// environment variables rather than committed to the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Designer.Controller.Model)
package config
