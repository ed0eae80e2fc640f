package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"

	"github.com/db47h/ways/internal/history"
	"github.com/db47h/ways/internal/wayssrv"
)

type serveCmd struct {
	Config string `long:"config" required:"true" description:"path to a server YAML config file"`
}

type serverConfig struct {
	ListenAddr  string            `yaml:"listenAddr"`
	JWTSecret   string            `yaml:"jwtSecret"`
	HistoryPath string            `yaml:"historyPath"`
	TokenTTL    time.Duration     `yaml:"tokenTtl"`
	Clients     map[string]string `yaml:"clients"` // clientID -> bcrypt secret hash
}

func (c *serveCmd) Execute(args []string) error {
	data, err := os.ReadFile(c.Config)
	if err != nil {
		return fmt.Errorf("reading config %q: %w", c.Config, err)
	}

	var cfg serverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config %q: %w", c.Config, err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	for id, hash := range cfg.Clients {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return fmt.Errorf("config: clients.%s is not a valid bcrypt hash: %w", id, err)
		}
	}

	var h *history.Store
	if cfg.HistoryPath != "" {
		h, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer h.Close()
	}

	clients := make(map[string]wayssrv.Client, len(cfg.Clients))
	for id, hash := range cfg.Clients {
		clients[id] = wayssrv.Client{ID: id, SecretHash: hash}
	}

	srv := wayssrv.New(wayssrv.Config{
		JWTSecret: []byte(cfg.JWTSecret),
		Clients:   clients,
		TokenTTL:  cfg.TokenTTL,
	}, h)

	fmt.Fprintf(os.Stderr, "wayslex: listening on %s\n", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, srv)
}
