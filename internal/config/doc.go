// Package config defines CLI settings and provides helpers to load,
// validate and save them.
//
// Settings come from a YAML file layered with MCL_* environment variables;
// environment values win. Everything is optional so the CLI works out of
// the box against Mojang's public endpoints.
package config
