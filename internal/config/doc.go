// Package config loads cloudpick settings.
//
// Values are layered, lowest precedence first: built-in defaults, the YAML
// config file ($XDG_CONFIG_HOME/cloudpick/config.yaml unless --config names
// another), CLOUDPICK_* environment variables (dots become underscores, so
// remote.rate is CLOUDPICK_REMOTE_RATE), and finally command-line flags.
package config
