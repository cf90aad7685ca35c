// Package main - точка входа сервиса filmorate: каталог фильмов с лайками,
// дружбой пользователей и подборкой популярных фильмов.
//
// Подкоманды:
//   - serve   (по умолчанию) - REST API поверх выбранного хранилища
//   - migrate up|down|status - схема PostgreSQL
//   - seed    - загрузка справочников жанров и рейтингов MPA
//   - version
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// version задаётся при сборке: -ldflags "-X main.version=v1.2.3".
var version = "dev"

// ══════════════════════════════════════════════════════════════════════════════
// CLI
// ══════════════════════════════════════════════════════════════════════════════

// Globals - флаги, общие для всех подкоманд.
type Globals struct {
	Config   string `help:"Path to config.yaml (defaults to ./config.yaml or ./config/config.yaml)." short:"c" type:"path" env:"FILMORATE_CONFIG"`
	LogLevel string `help:"Override log.level (debug, info, warn, error)." name:"log-level"`
}

// load читает конфигурацию и создаёт логгер согласно ей.
func (g *Globals) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if cfg.App.Version == "" || cfg.App.Version == "dev" {
		cfg.App.Version = version
	}
	log := logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format).
		With(logger.String("service", cfg.App.Name))
	return cfg, log, nil
}

// CLI описывает дерево подкоманд.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the REST API server."`
	Migrate MigrateCmd `cmd:"" help:"Manage the PostgreSQL schema."`
	Seed    SeedCmd    `cmd:"" help:"Load the reference catalog of genres and MPA ratings."`
	Version VersionCmd `cmd:"" help:"Print the build version."`
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("filmorate"),
		kong.Description("Film catalog with likes, friendships and popularity ranking."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)

	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// VersionCmd печатает версию сборки.
type VersionCmd struct{}

// Run реализует kong-команду.
func (VersionCmd) Run() error {
	fmt.Println("filmorate", version)
	return nil
}
