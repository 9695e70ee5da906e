// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Parsing is backed by github.com/caarlos0/env struct tags. Each config type
// is parsed exactly once per process and cached, so packages can call Load
// for their own Config without coordinating.
package config
