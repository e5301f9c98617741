package providers

import (
	"fmt"
	"reactledger/internal/structures"

	"github.com/gookit/validate"
	"github.com/robfig/cron/v3"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if c.conf.Discord.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid config: discord.requestsPerSecond must not be negative")
	}
	if c.conf.Rebuild.Schedule != "" {
		if _, err := cron.ParseStandard(c.conf.Rebuild.Schedule); err != nil {
			return fmt.Errorf("invalid config: rebuild.schedule: %w", err)
		}
	}
	return nil
}
