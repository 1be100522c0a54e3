package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/salon-retail/pkg/config"
	"github.com/angelmondragon/salon-retail/pkg/logger"
	"github.com/angelmondragon/salon-retail/pkg/security"
)

// hashpw prints an argon2id hash suitable for SALON_CHECKOUT_PASSWORD_HASH.
// The password is read from -password or, when omitted, the first line of stdin.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "hashpw", Level: zerolog.InfoLevel, Output: os.Stderr})

	_ = godotenv.Load()

	password := flag.String("password", "", "password to hash (reads stdin when empty)")
	flag.Parse()

	var params config.PasswordConfig
	if err := envconfig.Process(config.EnvPrefix, &params); err != nil {
		logg.Error(ctx, "failed to load argon2 parameters", err)
		os.Exit(1)
	}

	plain := *password
	if plain == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logg.Error(ctx, "failed to read password from stdin", err)
			os.Exit(1)
		}
		plain = strings.TrimRight(line, "\r\n")
	}

	hash, err := security.HashPassword(plain, params)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
