package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/openstackops/keymanager-provisioning-backend/cmd/flags"
	"github.com/openstackops/keymanager-provisioning-backend/common"
	"github.com/openstackops/keymanager-provisioning-backend/identity"
	"github.com/openstackops/keymanager-provisioning-backend/provision"
)

func main() {
	app := &cli.App{
		Name:    "provisioner",
		Usage:   "Provision key-manager identity resources",
		Version: common.Version,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute the provisioning plan against the identity store",
				Flags: append(append([]cli.Flag{}, flags.ProvisionFlags...), flags.CommonFlags...),
				Action: func(cCtx *cli.Context) error {
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

					ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					var opts []provision.ExecutorOption
					if creds != nil {
						opts = append(opts, provision.WithCredentialStore(creds))
					}

					report, err := provision.Provision(ctx, cfg, client, logger, opts...)
					if err != nil {
						logger.Error("Provisioning run rejected", "err", err)
						return err
					}

					out, err := json.MarshalIndent(report, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(out))

					if !report.Succeeded() {
						return fmt.Errorf("provisioning incomplete: %s", report.Summary())
					}
					return nil
				},
			},
			{
				Name:  "plan",
				Usage: "Print the provisioning plan without touching the identity store",
				Flags: append([]cli.Flag{
					flags.ConfigFlag,
					flags.PasswordFlag,
					flags.ServiceHostFlag,
					flags.ServiceSrvFlag,
					flags.DNSResolverFlag,
				}, flags.CommonFlags...),
				Action: func(cCtx *cli.Context) error {
					logger := flags.SetupLogger(cCtx)

					cfg, err := flags.BuildConfig(cCtx, logger)
					if err != nil {
						return err
					}
					// A plan render never needs real secrets.
					if cfg.Password == "" && cfg.PasswordSeed == "" {
						cfg.Password = "placeholder"
					}

					plan, err := provision.BuildPlan(cfg)
					if err != nil {
						return err
					}

					out, err := json.MarshalIndent(plan, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(out))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
