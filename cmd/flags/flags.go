package flags

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/openstackops/keymanager-provisioning-backend/common"
	"github.com/openstackops/keymanager-provisioning-backend/credstore"
	"github.com/openstackops/keymanager-provisioning-backend/endpointresolver"
	"github.com/openstackops/keymanager-provisioning-backend/httpserver"
	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
	"github.com/openstackops/keymanager-provisioning-backend/provision"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// BuildConfig assembles the provisioning configuration: YAML file first if
// given, then flag overrides, then SRV discovery of the service address when
// requested.
func BuildConfig(cCtx *cli.Context, logger *slog.Logger) (provision.Config, error) {
	cfg := provision.DefaultConfig()

	if path := cCtx.String(ConfigFlag.Name); path != "" {
		loaded, err := provision.LoadConfig(path)
		if err != nil {
			return provision.Config{}, err
		}
		cfg = loaded
	}

	if v := cCtx.String(PasswordFlag.Name); v != "" {
		cfg.Password = v
	}
	if v := cCtx.String(ServiceHostFlag.Name); v != "" {
		cfg.ServiceHost = v
	}

	if domain := cCtx.String(ServiceSrvFlag.Name); domain != "" {
		resolver := endpointresolver.NewResolver(cCtx.String(DNSResolverFlag.Name))
		ep, err := resolver.ResolveFirst(domain)
		if err != nil {
			return provision.Config{}, fmt.Errorf("service discovery failed: %w", err)
		}
		logger.Info("Discovered service endpoint", "domain", domain, "host", ep.Host, "port", ep.Port)
		cfg.ServiceHost = ep.Host
		cfg.ServicePort = int(ep.Port)
	}

	return cfg, nil
}

// BuildCredentialStore creates a credential store from the flag's location
// URI, or nil when unset.
func BuildCredentialStore(cCtx *cli.Context, logger *slog.Logger) (interfaces.CredentialStore, error) {
	uri := cCtx.String(CredentialStoreFlag.Name)
	if uri == "" {
		return nil, nil
	}
	return credstore.NewFactory(logger).StoreFor(uri)
}

var IdentityURLFlag = &cli.StringFlag{
	Name:     "identity-url",
	Required: true,
	Usage:    "base URL of the identity admin API (e.g. http://127.0.0.1:35357)",
}

var IdentityTokenFlag = &cli.StringFlag{
	Name:     "identity-token",
	Required: true,
	EnvVars:  []string{"IDENTITY_ADMIN_TOKEN"},
	Usage:    "admin token for the identity API",
}

var ConfigFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "YAML file with provisioning configuration",
}

var PasswordFlag = &cli.StringFlag{
	Name:    "password",
	EnvVars: []string{"PROVISION_PASSWORD"},
	Usage:   "password applied to every created user",
}

var ServiceHostFlag = &cli.StringFlag{
	Name:  "service-host",
	Usage: "host of the deployed key-manager API",
}

var ServiceSrvFlag = &cli.StringFlag{
	Name:  "service-srv",
	Usage: "DNS SRV domain to discover the key-manager address (overrides service-host)",
}

var DNSResolverFlag = &cli.StringFlag{
	Name:  "dns-resolver",
	Value: endpointresolver.DefaultResolverAddr,
	Usage: "DNS server used for SRV discovery",
}

var CredentialStoreFlag = &cli.StringFlag{
	Name:  "credential-store",
	Usage: "location URI to persist created user credentials (file://, vault://, s3://)",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "keymanager-provisioning",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ProvisionFlags = []cli.Flag{
	IdentityURLFlag,
	IdentityTokenFlag,
	ConfigFlag,
	PasswordFlag,
	ServiceHostFlag,
	ServiceSrvFlag,
	DNSResolverFlag,
	CredentialStoreFlag,
}
