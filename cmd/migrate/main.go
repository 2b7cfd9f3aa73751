// migrate aplica o revierte el esquema embebido en internal/infrastructure/migrations.
//
// Uso: go run ./cmd/migrate [up|down|steps N|version]
// Sin argumentos ejecuta "up". La conexión sale de DATABASE_URL o de las variables DB_*.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/migrations"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "migrate"})

	m, err := migrations.New(cfg.DB.ConnectionString(), log.Component("migrations"))
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(os.Args) < 3 {
			err = fmt.Errorf("uso: migrate steps N")
			break
		}
		var n int
		n, err = strconv.Atoi(os.Args[2])
		if err == nil {
			err = m.Steps(n)
		}
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	default:
		err = fmt.Errorf("comando %q desconocido (up|down|steps N|version)", cmd)
	}
	if closeErr := m.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("cerrar migrador")
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}
}
