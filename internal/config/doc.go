// Package config defines conductor's configuration schema and loader.
//
// Configuration lives in a single config.yaml inside the configuration
// directory. Every field is optional: values found in the file overlay the
// defaults from GetDefaultConfig, and a missing file simply yields the
// defaults. Server capability descriptors are kept separately in a
// capabilities file whose location is resolved via Config.CapabilitiesPath.
package config
