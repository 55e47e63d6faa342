package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/daemon"
	"auricle/internal/logging"
)

// commandContext lazily loads configuration and opens the corpus store so
// subcommands share one handle per invocation.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *corpus.Store
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureStore() (*corpus.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		store, err := corpus.Open(cfg)
		if err != nil {
			c.storeErr = err
			return
		}
		c.store = store
	})
	return c.store, c.storeErr
}

// stages wires the pipeline for direct CLI execution without a daemon.
func (c *commandContext) stages() (*daemon.Stages, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return daemon.NewStages(store, cfg, logging.NewNop()), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations != nil && current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
