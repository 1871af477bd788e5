// Package config provides configuration management for the simpledb CLI.
//
// # Key Features
//
// - Config: one structure covering storage, columns, display, codecs, logging and tracing
// - Defaults matching the personal data application (name, address, phone_number)
// - YAML files with ${VAR_NAME} substitution
// - SIMPLEDB_ prefixed environment variables override file values
// - Validation against the registered storages and displays
//
// # Usage
//
//	cfg, err := config.Load("simpledb.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	s, err := storage.Registry.Create(cfg.Storage, cfg.StorageOptions())
//
// An empty path loads defaults and environment overrides only.
//
// ## Environment Variable Substitution
//
// Values in the file may reference the environment:
//
//	log:
//	  level: ${SIMPLEDB_LOG_LEVEL}
//
// ## Environment Overrides
//
// Every key can be set directly, with dots replaced by underscores:
//
//	SIMPLEDB_DISPLAY_CELL_WIDTH=30 simpledb display --path people.csv
package config
