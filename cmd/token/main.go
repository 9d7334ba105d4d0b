package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/internal/usecases/authenticating"
)

// Emite um token de operador assinado com AUTH_SECRET
func main() {
	operatorID := flag.String("operator", "", "identificador do operador")
	role := flag.Int("role", domain.RoleOperator, "papel: 1=admin, 2=operador, 3=leitura")
	ttl := flag.Duration("ttl", 24*time.Hour, "validade do token")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	token, err := authenticating.NewService(cfg).IssueToken(*operatorID, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Error("Erro ao emitir token")
		os.Exit(1)
	}

	fmt.Println(token)
}
