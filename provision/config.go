package provision

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// ServiceType is the catalog type under which the key-manager is registered.
const ServiceType = "key-manager"

// DefaultServicePort is the key-manager API port advertised in the endpoint.
const DefaultServicePort = 9311

// ConflictPolicy selects what the executor does when user creation hits a
// name conflict in a populated identity store.
type ConflictPolicy string

const (
	// ConflictFail records the entry as failed. This is the default: the
	// workflow does not de-duplicate users on its own.
	ConflictFail ConflictPolicy = "fail"

	// ConflictSkip looks the existing user up by name, marks the entry
	// reused and proceeds with the role assignment against the existing id.
	ConflictSkip ConflictPolicy = "skip"
)

// ParseConflictPolicy validates a policy string from configuration.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case ConflictFail, ConflictSkip:
		return ConflictPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid user conflict policy %q (want %q or %q)", s, ConflictFail, ConflictSkip)
	}
}

// Config carries every option the provisioning workflow recognizes. There is
// no ambient configuration: callers construct or load a Config and pass it to
// Provision explicitly.
type Config struct {
	// AdminTenant is the name of the pre-existing tenant the service user is
	// scoped to.
	AdminTenant string `yaml:"admin_tenant" json:"admin_tenant,omitempty"`

	// ServiceUser is the name of the key-manager's own service account.
	ServiceUser string `yaml:"service_user" json:"service_user,omitempty"`

	// Password is applied to every generated user. Mutually exclusive with
	// PasswordSeed.
	Password string `yaml:"password" json:"password,omitempty"`

	// PasswordSeed, when set and Password is empty, derives a distinct
	// deterministic password per user.
	PasswordSeed string `yaml:"password_seed" json:"password_seed,omitempty"`

	// EmailDomain forms user emails as <name>@<EmailDomain>.
	EmailDomain string `yaml:"email_domain" json:"email_domain,omitempty"`

	// ServiceHost and ServicePort locate the deployed key-manager API for
	// the catalog endpoint.
	ServiceHost string `yaml:"service_host" json:"service_host,omitempty"`
	ServicePort int    `yaml:"service_port" json:"service_port,omitempty"`

	// Region is the catalog region the endpoint is registered under.
	Region string `yaml:"region" json:"region,omitempty"`

	// CatalogBackend is the identity service's catalog backend kind. The
	// endpoint is only registered when this is "sql"; templated or in-memory
	// catalogs do not persist endpoint records.
	CatalogBackend string `yaml:"catalog_backend" json:"catalog_backend,omitempty"`

	// ServiceName and ServiceDescription fill the catalog service record.
	ServiceName        string `yaml:"service_name" json:"service_name,omitempty"`
	ServiceDescription string `yaml:"service_description" json:"service_description,omitempty"`

	// OnUserConflict selects the ConflictPolicy ("fail" or "skip").
	OnUserConflict string `yaml:"on_user_conflict" json:"on_user_conflict,omitempty"`

	// CredentialStore is an optional location URI (file://, vault://, s3://)
	// where created user credentials are persisted.
	CredentialStore string `yaml:"credential_store" json:"credential_store,omitempty"`
}

// DefaultConfig returns the stock key-manager deployment configuration.
func DefaultConfig() Config {
	return Config{
		AdminTenant:        "service",
		ServiceUser:        "barbican",
		EmailDomain:        "example.com",
		ServiceHost:        "127.0.0.1",
		ServicePort:        DefaultServicePort,
		Region:             "RegionOne",
		CatalogBackend:     "sql",
		ServiceName:        "barbican",
		ServiceDescription: "Barbican Key Management Service",
		OnUserConflict:     string(ConflictFail),
	}
}

// ApplyDefaults fills zero-valued fields from DefaultConfig. Password and
// PasswordSeed are left alone: one of them must be supplied by the caller.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.AdminTenant == "" {
		c.AdminTenant = def.AdminTenant
	}
	if c.ServiceUser == "" {
		c.ServiceUser = def.ServiceUser
	}
	if c.EmailDomain == "" {
		c.EmailDomain = def.EmailDomain
	}
	if c.ServiceHost == "" {
		c.ServiceHost = def.ServiceHost
	}
	if c.ServicePort == 0 {
		c.ServicePort = def.ServicePort
	}
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.CatalogBackend == "" {
		c.CatalogBackend = def.CatalogBackend
	}
	if c.ServiceName == "" {
		c.ServiceName = def.ServiceName
	}
	if c.ServiceDescription == "" {
		c.ServiceDescription = def.ServiceDescription
	}
	if c.OnUserConflict == "" {
		c.OnUserConflict = def.OnUserConflict
	}
}

// Validate checks that the configuration can build an executable plan.
func (c Config) Validate() error {
	if _, err := interfaces.NewResourceName(c.AdminTenant); err != nil {
		return fmt.Errorf("admin tenant: %w", err)
	}
	if _, err := interfaces.NewResourceName(c.ServiceUser); err != nil {
		return fmt.Errorf("service user: %w", err)
	}
	if c.Password == "" && c.PasswordSeed == "" {
		return errors.New("either a password or a password seed is required")
	}
	if c.ServiceHost == "" {
		return errors.New("service host is required")
	}
	if c.ServicePort <= 0 || c.ServicePort > 65535 {
		return fmt.Errorf("invalid service port %d", c.ServicePort)
	}
	if _, err := ParseConflictPolicy(c.OnUserConflict); err != nil {
		return err
	}
	return nil
}

// PublicURL returns the endpoint URL advertised to API consumers.
func (c Config) PublicURL() string {
	return fmt.Sprintf("http://%s:%d", c.ServiceHost, c.ServicePort)
}

// InternalURL returns the endpoint URL used inside the deployment. The stock
// deployment serves both on the same address.
func (c Config) InternalURL() string {
	return c.PublicURL()
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
