package main

import (
	"strings"
	"sync"

	"github.com/kjk/movies/config"
	"github.com/kjk/movies/log"
	"github.com/kjk/movies/moviestore"
)

type commandContext struct {
	configFlag  *string
	fileFlag    *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, fileFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		fileFlag:    fileFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.fileFlag != nil && strings.TrimSpace(*c.fileFlag) != "" {
			cfg.DataFile, err = config.ExpandPath(strings.TrimSpace(*c.fileFlag))
			if err != nil {
				c.configErr = err
				return
			}
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Verbose = true
		}
		c.config = cfg
		c.configPath = resolved
		log.Verbose = cfg.Verbose
		if cfg.LogDir != "" {
			log.Init(&log.Config{Dir: cfg.LogDir})
		}
	})
	return c.config, c.configErr
}

// openStore returns store for the configured data file
func (c *commandContext) openStore() (*moviestore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	s := &moviestore.Store{
		Path: cfg.DataFile,
	}
	if err = moviestore.OpenStore(s); err != nil {
		return nil, err
	}
	return s, nil
}
