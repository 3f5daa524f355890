// Command token mints a bearer token signed with the configured JWT secret.
//
//	token -subject nightly-etl -role LOADER
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yigit/costequity/internal/app/models/dto/enums"
	"github.com/yigit/costequity/internal/bootstrap"
	"github.com/yigit/costequity/internal/config"
	"github.com/yigit/costequity/internal/pkg/auth"
	"github.com/yigit/costequity/internal/pkg/helpers"
	"github.com/yigit/costequity/internal/pkg/logger"
)

func main() {
	subject := flag.String("subject", "loader", "token subject")
	role := flag.String("role", string(enums.RoleLoader), "role claim (LOADER or ANALYST)")
	flag.Parse()

	// stdout carries only the token
	logger.Configure(logger.Config{Level: logger.InfoLevel, Pretty: true, Output: os.Stderr})

	if !enums.RoleType(*role).Valid() {
		logger.Error().Str("role", *role).Msg("Unknown role")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(bootstrap.ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	token, expiresIn, err := jwtService.GenerateToken(*subject, *role)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate token")
		os.Exit(1)
	}

	logger.Info().Str("subject", *subject).Str("role", *role).Int("expiresIn", expiresIn).Msg("Token issued")
	fmt.Println(token)
}
