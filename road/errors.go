package road

import "errors"

var ErrConfiguration = errors.New("configuration error")

// ConfigError is returned by Config.Validate and by strategy lookup. It is fatal to
// setup only; a running session never produces one.
type ConfigError string

func (e ConfigError) Error() string { return "configuration error: " + string(e) }

func (e ConfigError) Is(target error) bool { return target == ErrConfiguration }

func errConfig(msg string) error { return ConfigError(msg) }
