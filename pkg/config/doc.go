// Package config loads the linker configuration and resolves the
// directories it works on.
//
// Configuration is layered with koanf: embedded TOML defaults, the
// optional .jibs-autolinker.json in the working directory, then
// JIBS_AUTOLINKER_* environment variables. A missing or unparsable file
// is not an error; keys with the wrong type are reported and ignored.
package config
