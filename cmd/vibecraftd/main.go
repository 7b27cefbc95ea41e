// Command vibecraftd runs a protocol-773 VibeCraft server: flags (or an
// optional YAML config file) set up a Server and the process runs until an
// OS signal or an internal shutdown fires.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/StoreStation/VibeCraft/pkg/server"
)

// fileConfig is the optional YAML overlay's shape: values present in the
// file fill in defaults, but any flag the operator actually passed still
// wins.
type fileConfig struct {
	Address      string `yaml:"address"`
	MaxPlayers   int    `yaml:"max_players"`
	MOTD         string `yaml:"motd"`
	Seed         int64  `yaml:"seed"`
	ViewDistance int32  `yaml:"view_distance"`
}

func main() {
	defaults := server.DefaultConfig()

	address := flag.String("address", defaults.Address, "server address to listen on")
	maxPlayers := flag.Int("max-players", defaults.MaxPlayers, "maximum number of players")
	motd := flag.String("motd", defaults.MOTD, "server MOTD")
	seed := flag.Int64("seed", defaults.Seed, "world seed")
	viewDistance := flag.Int("view-distance", int(defaults.ViewDistance), "chunk view distance radius")
	configPath := flag.String("config", "", "optional YAML config file overlaying these defaults")
	flag.Parse()

	config := defaults
	if *configPath != "" {
		overlay, err := loadFileConfig(*configPath)
		if err != nil {
			log.Fatalf("vibecraftd: reading config %s: %v", *configPath, err)
		}
		applyFileConfig(&config, overlay)
	}

	// Flags explicitly set on the command line always win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "address":
			config.Address = *address
		case "max-players":
			config.MaxPlayers = *maxPlayers
		case "motd":
			config.MOTD = *motd
		case "seed":
			config.Seed = *seed
		case "view-distance":
			config.ViewDistance = int32(*viewDistance)
		}
	})

	srv := server.New(config)
	if err := srv.Start(); err != nil {
		log.Fatalf("vibecraftd: failed to start: %v", err)
	}

	log.Printf("vibecraftd started (Minecraft Java Edition, protocol 773)")
	log.Printf("address=%s max-players=%d view-distance=%d", config.Address, config.MaxPlayers, config.ViewDistance)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("vibecraftd: shutting down (signal: %v)", sig)
	case <-srv.StopChan():
		log.Println("vibecraftd: shutting down (internal)")
	}

	srv.Stop()
	log.Println("vibecraftd: stopped")
}

func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, err
	}
	return fc, nil
}

func applyFileConfig(config *server.Config, fc fileConfig) {
	if fc.Address != "" {
		config.Address = fc.Address
	}
	if fc.MaxPlayers != 0 {
		config.MaxPlayers = fc.MaxPlayers
	}
	if fc.MOTD != "" {
		config.MOTD = fc.MOTD
	}
	if fc.Seed != 0 {
		config.Seed = fc.Seed
	}
	if fc.ViewDistance != 0 {
		config.ViewDistance = fc.ViewDistance
	}
}
