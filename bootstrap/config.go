package bootstrap

import (
	"github.com/kbukum/voxscribe/config"
)

// Config is satisfied by any struct embedding config.ServiceConfig that
// overrides ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
