package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// fileConfig mirrors Config in HCL. Every block and attribute is optional;
// unset values keep the defaults.
//
//	server {
//	  port         = 3001
//	  read_timeout = "30s"
//	}
//	llm {
//	  model   = "gemini-1.5-flash"
//	  timeout = "60s"
//	}
//	cors {
//	  allowed_origins = ["http://localhost:5173"]
//	}
type fileConfig struct {
	Server  *fileServer  `hcl:"server,block"`
	LLM     *fileLLM     `hcl:"llm,block"`
	CORS    *fileCORS    `hcl:"cors,block"`
	Metrics *fileMetrics `hcl:"metrics,block"`
	Log     *fileLog     `hcl:"log,block"`
}

type fileServer struct {
	Host         string `hcl:"host,optional"`
	Port         int    `hcl:"port,optional"`
	ReadTimeout  string `hcl:"read_timeout,optional"`
	WriteTimeout string `hcl:"write_timeout,optional"`
}

type fileLLM struct {
	APIKey  string `hcl:"api_key,optional"`
	Model   string `hcl:"model,optional"`
	Timeout string `hcl:"timeout,optional"`
}

type fileCORS struct {
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

type fileMetrics struct {
	Addr *string `hcl:"addr,optional"`
}

type fileLog struct {
	Level string `hcl:"level,optional"`
}

// applyFile decodes an .hcl (or .hcl.json) file onto cfg.
func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	if s := fc.Server; s != nil {
		if s.Host != "" {
			cfg.Server.Host = s.Host
		}
		if s.Port != 0 {
			cfg.Server.Port = s.Port
		}
		if err := setDuration(&cfg.Server.ReadTimeout, "server.read_timeout", s.ReadTimeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.Server.WriteTimeout, "server.write_timeout", s.WriteTimeout); err != nil {
			return err
		}
	}

	if l := fc.LLM; l != nil {
		if l.APIKey != "" {
			cfg.LLM.APIKey = l.APIKey
		}
		if l.Model != "" {
			cfg.LLM.Model = l.Model
		}
		if err := setDuration(&cfg.LLM.Timeout, "llm.timeout", l.Timeout); err != nil {
			return err
		}
	}

	if c := fc.CORS; c != nil && c.AllowedOrigins != nil {
		cfg.CORS.AllowedOrigins = c.AllowedOrigins
	}

	if m := fc.Metrics; m != nil && m.Addr != nil {
		cfg.Metrics.Addr = *m.Addr
	}

	if l := fc.Log; l != nil && l.Level != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(l.Level)); err != nil {
			return fmt.Errorf("log.level %q: %w", l.Level, err)
		}
	}
	return nil
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
