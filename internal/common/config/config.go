package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type DB struct {
	Driver  string `yaml:"driver"` // pgx | sqlite3; empty disables the journal
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Pass    string `yaml:"password"`
	Name    string `yaml:"database"`
	SSLMode string `yaml:"sslmode"`
	Path    string `yaml:"path"` // sqlite3 file
}

func (d DB) Enabled() bool { return d.Driver != "" }

type MQ struct {
	Host   string `yaml:"host"` // empty disables notifications
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"password"`
	VHost  string `yaml:"vhost"`
	UseTLS bool   `yaml:"tls"`
}

func (m MQ) Enabled() bool { return m.Host != "" }

type Kitchen struct {
	Servers      int `yaml:"servers"`
	Cooks        int `yaml:"cooks"`
	Capacity     int `yaml:"capacity"`
	ArrivalMinMs int `yaml:"arrival_min_ms"`
	ArrivalMaxMs int `yaml:"arrival_max_ms"`
	WorkMinMs    int `yaml:"work_min_ms"`
	WorkMaxMs    int `yaml:"work_max_ms"`
	EventBuffer  int `yaml:"event_buffer"`
}

type Dashboard struct {
	Enabled   bool `yaml:"enabled"`
	RefreshMs int  `yaml:"refresh_ms"`
}

type HTTP struct {
	Port int `yaml:"port"` // 0 disables the status API
}

type MQTT struct {
	Broker     string `yaml:"broker"` // empty disables snapshot broadcast
	ClientID   string `yaml:"client_id"`
	Topic      string `yaml:"topic"`
	QoS        byte   `yaml:"qos"`
	IntervalMs int    `yaml:"interval_ms"`
}

func (m MQTT) Enabled() bool { return m.Broker != "" }

type Log struct {
	Level string `yaml:"level"`
}

type App struct {
	Kitchen   Kitchen   `yaml:"kitchen"`
	Dashboard Dashboard `yaml:"dashboard"`
	HTTP      HTTP      `yaml:"http"`
	Database  DB        `yaml:"database"`
	Rabbit    MQ        `yaml:"rabbitmq"`
	MQTT      MQTT      `yaml:"mqtt"`
	Log       Log       `yaml:"log"`
}

func Default() App {
	return App{
		Kitchen: Kitchen{
			Servers:      3,
			Cooks:        2,
			Capacity:     20,
			ArrivalMinMs: 200,
			ArrivalMaxMs: 600,
			WorkMinMs:    500,
			WorkMaxMs:    2500,
			EventBuffer:  256,
		},
		Dashboard: Dashboard{Enabled: true, RefreshMs: 200},
		Database:  DB{Port: 5432, SSLMode: "disable"},
		Rabbit:    MQ{Port: 5672, VHost: "/"},
		MQTT:      MQTT{ClientID: "restaurant-queue", Topic: "kitchen/status", IntervalMs: 1000},
		Log:       Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (App, error) {
	a := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return App{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return a, nil
}

func (a App) Validate() error {
	k := a.Kitchen
	switch {
	case k.Capacity <= 0:
		return errors.New("kitchen.capacity must be positive")
	case k.Servers < 0 || k.Cooks < 0:
		return errors.New("kitchen.servers and kitchen.cooks must not be negative")
	case k.ArrivalMinMs < 0 || k.ArrivalMaxMs < k.ArrivalMinMs:
		return errors.New("kitchen arrival range is inverted")
	case k.WorkMinMs < 0 || k.WorkMaxMs < k.WorkMinMs:
		return errors.New("kitchen work range is inverted")
	case k.EventBuffer <= 0:
		return errors.New("kitchen.event_buffer must be positive")
	}
	switch a.Database.Driver {
	case "":
	case "pgx":
		if a.Database.Host == "" || a.Database.User == "" || a.Database.Name == "" {
			return errors.New("database config incomplete")
		}
	case "sqlite3":
		if a.Database.Path == "" {
			return errors.New("database.path is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", a.Database.Driver)
	}
	if a.Rabbit.Enabled() && a.Rabbit.User == "" {
		return errors.New("rabbitmq config incomplete")
	}
	return nil
}

func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
