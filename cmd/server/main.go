// Command server runs the rehab rewards API.
//
//	server serve     start the HTTP server (migrates first unless --migrate=false)
//	server migrate   create or update the schema and exit
//	server seed      load the exercise catalogue and demo profiles
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
//
// @title                      Rehab Rewards API
// @version                    1.0
// @description                Rehabilitation exercise tracking with AI video feedback and achievement NFTs.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Rehab rewards API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
