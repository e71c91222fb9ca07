package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	IsDebug *bool `yaml:"is_debug"`
	Listen  struct {
		Type     string `yaml:"type" env-default:"port"`
		BindIP   string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env-default:"5000"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	}
	Api struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		BindIP   string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env-default:"5001"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	}
	Metrics struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"5002"`
	}
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"localhost"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"evgate"`
	}
	// RequestTimeout limits how long an operator command waits for the
	// station's answer before a timeout result is synthesized.
	RequestTimeout    int `yaml:"request_timeout" env-default:"30"`
	HeartbeatInterval int `yaml:"heartbeat_interval" env-default:"600"`
}

var instance *Config
var once sync.Once

func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		log.Println("reading config")
		instance = &Config{}
		if err = cleanenv.ReadConfig("config.yml", instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			log.Println(desc)
			log.Println(err)
			instance = nil
		}
	})
	return instance, err
}
