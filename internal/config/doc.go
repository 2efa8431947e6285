// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/libris/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/libris/config.cue on macOS, %APPDATA%\libris\config.cue
// on Windows), falling back to ./config.cue. Every key can be overridden from the
// environment with the LIBRIS_ prefix, e.g. LIBRIS_REDIS_ADDR for redis.addr.
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue)
// before being merged over the defaults.
package config
