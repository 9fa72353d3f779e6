// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"os"

	"github.com/dalzilio/mtbdd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// Config holds the settings of the BDD managers created by the tool. It can
// be loaded from a YAML file and overridden with command line flags.
type Config struct {
	Nodesize     int      `yaml:"nodesize"`
	Maxnodesize  int      `yaml:"maxnodesize"`
	Cachesize    int      `yaml:"cachesize"`
	Cacheratio   int      `yaml:"cacheratio"`
	Minfreenodes int      `yaml:"minfreenodes"`
	Reordering   string   `yaml:"reordering"`
	MaxGrowth    float64  `yaml:"maxgrowth"`
	Vars         []string `yaml:"vars"`
}

func defaultConfig() Config {
	return Config{
		Cachesize:    10000,
		Minfreenodes: 20,
		Reordering:   mtbdd.ReorderNone.String(),
		MaxGrowth:    1.2,
	}
}

// loadConfig reads the YAML file at path into cfg. Fields missing from the
// file keep their value.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot read configuration")
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return errors.Wrapf(err, "bad configuration file %s", path)
	}
	return nil
}

func addManagerFlags(fs *pflag.FlagSet, cfg *Config) {
	def := defaultConfig()
	fs.IntVar(&cfg.Nodesize, "nodesize", def.Nodesize, "initial size of the node table")
	fs.IntVar(&cfg.Maxnodesize, "maxnodesize", def.Maxnodesize, "maximal number of nodes (0 for no limit)")
	fs.IntVar(&cfg.Cachesize, "cachesize", def.Cachesize, "initial number of bins in the operation cache")
	fs.IntVar(&cfg.Cacheratio, "cacheratio", def.Cacheratio, "live nodes per cache bin before the cache grows (0 for a fixed size)")
	fs.StringVar(&cfg.Reordering, "reordering", def.Reordering, "dynamic reordering method (none, window3, sift, hybrid)")
	fs.Float64Var(&cfg.MaxGrowth, "maxgrowth", def.MaxGrowth, "size growth allowed while sifting")
	fs.StringSliceVar(&cfg.Vars, "vars", nil, "variable names, in the initial order")
}

// override copies into cfg the settings of flags that were set on the
// command line.
func override(cfg *Config, flags *Config, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "nodesize":
			cfg.Nodesize = flags.Nodesize
		case "maxnodesize":
			cfg.Maxnodesize = flags.Maxnodesize
		case "cachesize":
			cfg.Cachesize = flags.Cachesize
		case "cacheratio":
			cfg.Cacheratio = flags.Cacheratio
		case "reordering":
			cfg.Reordering = flags.Reordering
		case "maxgrowth":
			cfg.MaxGrowth = flags.MaxGrowth
		case "vars":
			cfg.Vars = flags.Vars
		}
	})
}

// newBDD returns a manager with varnum variables using the settings in cfg.
func (cfg Config) newBDD(varnum int, logger logrus.FieldLogger) (*mtbdd.BDD, error) {
	method, ok := mtbdd.ParseReorderMethod(cfg.Reordering)
	if !ok {
		return nil, errors.Errorf("unknown reordering method %q", cfg.Reordering)
	}
	return mtbdd.New(varnum,
		mtbdd.Nodesize(cfg.Nodesize),
		mtbdd.Maxnodesize(cfg.Maxnodesize),
		mtbdd.Cachesize(cfg.Cachesize),
		mtbdd.Cacheratio(cfg.Cacheratio),
		mtbdd.Minfreenodes(cfg.Minfreenodes),
		mtbdd.Reordering(method),
		mtbdd.MaxGrowth(cfg.MaxGrowth),
		mtbdd.Logger(logger),
	)
}
