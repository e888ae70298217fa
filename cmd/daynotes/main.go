package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkondratev/daynotes/internal/client"
	"github.com/mkondratev/daynotes/internal/config"
	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/internal/vault"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	// File-backed logging keeps log lines out of the password prompt.
	log := logger.NewFileLogger("daynotes")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := client.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}
	defer app.Close()

	if err = unlock(ctx, app); err != nil {
		log.Fatal().Err(err).Msg("vault unlock error")
	}

	if cfg.CloudEnabled() {
		connectCloud(ctx, app, log)
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

// unlock walks the startup key flow: fast device-key path first, then
// password prompt, creating the vault on first run.
func unlock(ctx context.Context, app *client.App) error {
	if app.HasVault() {
		if ok, err := app.TryUnlockWithDeviceKey(ctx); err != nil {
			return err
		} else if ok {
			return nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if app.HasVault() {
			fmt.Print("Vault password: ")
		} else {
			fmt.Print("Create vault password: ")
		}

		password, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		password = strings.TrimRight(password, "\r\n")
		if password == "" {
			continue
		}

		if !app.HasVault() {
			return app.CreateVault(ctx, password)
		}

		err = app.Unlock(ctx, password)
		if errors.Is(err, vault.ErrInvalidPassword) {
			fmt.Println("Invalid password, try again.")
			continue
		}
		return err
	}
}

// connectCloud enters cloud mode with env-provided credentials, falling back
// to the cached account key when the backend is unreachable. Both failing is
// not fatal: the client keeps working locally.
func connectCloud(ctx context.Context, app *client.App, log *logger.Logger) {
	login := os.Getenv("DAYNOTES_LOGIN")
	password := os.Getenv("DAYNOTES_PASSWORD")

	if login != "" && password != "" {
		if err := app.ConnectCloud(ctx, login, password); err == nil {
			return
		} else {
			log.Warn().Err(err).Msg("cloud login failed, trying cached account key")
		}
	}

	if ok, err := app.TryConnectCloudOffline(ctx); err != nil {
		log.Warn().Err(err).Msg("offline cloud mode unavailable")
	} else if !ok {
		log.Info().Msg("running in local-only mode")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
