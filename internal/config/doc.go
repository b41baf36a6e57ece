// Package config resolves the settings of a sync run from defaults, an
// optional YAML file, an optional .env file and the process environment.
package config
