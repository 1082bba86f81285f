package config

import (
	"io/ioutil"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/operator-framework/boxopt/pkg/boxopt"
	"github.com/operator-framework/boxopt/pkg/oracle"
)

type File struct {
	Optimizer Config `yaml:"optimizer"`
}

type Config struct {
	Workers        int    `yaml:"workers"`
	BatchSize      int    `yaml:"batchSize"`
	Engine         string `yaml:"engine"`
	SessionPolicy  string `yaml:"sessionPolicy"`
	ExitPolicy     string `yaml:"exitPolicy"`
	MetricsAddress string `yaml:"metricsAddress"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func LoadConfig(cfgPath string) (*Config, error) {
	f, err := os.Open(os.ExpandEnv(cfgPath))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var cfgFile File
	err = yaml.Unmarshal(d, &cfgFile)
	if err != nil {
		return nil, err
	}

	config := &cfgFile.Optimizer
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.BatchSize == 0 {
		c.BatchSize = 1
	}
	if _, err := oracle.ForEngine(c.Engine); err != nil {
		c.Engine = oracle.EngineGini
	}
	if _, err := boxopt.ParseSessionPolicy(c.SessionPolicy); err != nil || c.SessionPolicy == "" {
		c.SessionPolicy = boxopt.SessionPerWorker.String()
	}
	if _, err := boxopt.ParseExitPolicy(c.ExitPolicy); err != nil || c.ExitPolicy == "" {
		c.ExitPolicy = boxopt.ExitWhenEmpty.String()
	}
}

// Options translates the configuration into optimizer options.
func (c *Config) Options() ([]boxopt.Option, error) {
	session, err := boxopt.ParseSessionPolicy(c.SessionPolicy)
	if err != nil {
		return nil, err
	}
	exit, err := boxopt.ParseExitPolicy(c.ExitPolicy)
	if err != nil {
		return nil, err
	}
	return []boxopt.Option{
		boxopt.WithWorkers(c.Workers),
		boxopt.WithBatchSize(c.BatchSize),
		boxopt.WithSessionPolicy(session),
		boxopt.WithExitPolicy(exit),
	}, nil
}
