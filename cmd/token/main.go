// token emite un JWT de desarrollo para un actor. El login real es externo a este servicio.
//
// Uso: go run ./cmd/token <user_id> [minutos]
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: token <user_id> [minutos]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	minutes := cfg.JWT.Expiration
	if len(os.Args) > 2 {
		if minutes, err = strconv.Atoi(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "minutos inválidos: %v\n", err)
			os.Exit(2)
		}
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, os.Args[1], cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
