package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/openstackops/keymanager-provisioning-backend/cmd/flags"
	"github.com/openstackops/keymanager-provisioning-backend/common"
	"github.com/openstackops/keymanager-provisioning-backend/httpserver"
	"github.com/openstackops/keymanager-provisioning-backend/identity"
)

var cliFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	flags.MetricsAddrFlag,
	flags.PprofFlag,
	flags.DrainSecondsFlag,
}, append(flags.ProvisionFlags, flags.CommonFlags...)...)

func main() {
	app := &cli.App{
		Name:    "provisioning-server",
		Usage:   "Serve the key-manager identity provisioning API",
		Version: common.Version,
		Flags:   cliFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")

			logger := flags.SetupLogger(cCtx)

			cfg, err := flags.BuildConfig(cCtx, logger)
			if err != nil {
				logger.Error("Failed to build provisioning config", "err", err)
				return err
			}

			creds, err := flags.BuildCredentialStore(cCtx, logger)
			if err != nil {
				logger.Error("Failed to create credential store", "err", err)
				return err
			}

			client := identity.NewClient(
				cCtx.String(flags.IdentityURLFlag.Name),
				cCtx.String(flags.IdentityTokenFlag.Name),
			)

			handler := httpserver.NewHandler(client, cfg, creds, logger)
			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			logger.Info("Shutting down")
			server.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
