package config

import (
	"fmt"
	"os"
	"strings"
)

// Project identifies one of the logical data-service projects admind talks to.
type Project string

// Logical projects. Auth issues and verifies user tokens; the others host
// data. A deployment may point all four at the same physical instance.
const (
	ProjectAuth     Project = "auth"
	ProjectCustomer Project = "customer"
	ProjectVendor   Project = "vendor"
	ProjectDefault  Project = "default"
)

// Environment variable names.
const (
	EnvAuthURL            = "ADMIND_AUTH_URL"
	EnvAuthAnonKey        = "ADMIND_AUTH_ANON_KEY"
	EnvAuthServiceKey     = "ADMIND_AUTH_SERVICE_KEY"
	EnvCustomerURL        = "ADMIND_CUSTOMER_URL"
	EnvCustomerAnonKey    = "ADMIND_CUSTOMER_ANON_KEY"
	EnvCustomerServiceKey = "ADMIND_CUSTOMER_SERVICE_KEY"
	EnvVendorURL          = "ADMIND_VENDOR_URL"
	EnvVendorAnonKey      = "ADMIND_VENDOR_ANON_KEY"
	EnvVendorServiceKey   = "ADMIND_VENDOR_SERVICE_KEY"
	EnvDataURL            = "ADMIND_DATA_URL"
	EnvDataAnonKey        = "ADMIND_DATA_ANON_KEY"
	EnvDataServiceKey     = "ADMIND_DATA_SERVICE_KEY"
	EnvAdminEnabled       = "ADMIND_ADMIN_ENABLED"
)

// ProjectCredentials is the resolved endpoint and key material for one
// logical project.
type ProjectCredentials struct {
	URL        string
	AnonKey    string
	ServiceKey string
}

// MissingError reports that a credential fallback chain was exhausted. It
// names the primary (most specific) variable the operator should set.
type MissingError struct {
	Variable string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s is not set (and no fallback value is available)", e.Variable)
}

// Config is the immutable configuration snapshot taken at process start.
// All credential lookups after Load are pure reads against this struct.
type Config struct {
	// AdminEnabled gates the whole admin surface. When false every
	// privileged route answers 403 without inspecting credentials.
	AdminEnabled bool

	projects map[Project]ProjectCredentials
}

// Load resolves credentials for all four projects from the environment and
// returns the snapshot. It fails with a MissingError as soon as any chain is
// exhausted; callers are expected to treat that as fatal.
func Load() (*Config, error) {
	auth, err := resolveProject(ProjectAuth, nil)
	if err != nil {
		return nil, err
	}

	projects := map[Project]ProjectCredentials{ProjectAuth: auth}
	for _, p := range []Project{ProjectCustomer, ProjectVendor, ProjectDefault} {
		creds, err := resolveProject(p, &auth)
		if err != nil {
			return nil, err
		}
		projects[p] = creds
	}

	return &Config{
		AdminEnabled: parseEnabled(os.Getenv(EnvAdminEnabled)),
		projects:     projects,
	}, nil
}

// Project returns the resolved credentials for a logical project.
func (c *Config) Project(p Project) (ProjectCredentials, error) {
	creds, ok := c.projects[p]
	if !ok {
		return ProjectCredentials{}, fmt.Errorf("unknown project %q", p)
	}
	return creds, nil
}

// Redacted returns the resolved credentials per project with key material
// masked, for display by the config command.
func (c *Config) Redacted() map[Project]ProjectCredentials {
	out := make(map[Project]ProjectCredentials, len(c.projects))
	for p, creds := range c.projects {
		out[p] = ProjectCredentials{
			URL:        creds.URL,
			AnonKey:    mask(creds.AnonKey),
			ServiceKey: mask(creds.ServiceKey),
		}
	}
	return out
}

// Resolve returns explicit when present, else fallback when present, else a
// MissingError naming name. Presence means non-blank after trimming; a
// present value is returned verbatim, untrimmed.
func Resolve(name, explicit, fallback string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return "", &MissingError{Variable: name}
}

// resolveProject runs the chain for each of the three values of one project.
// authTier is nil when resolving the auth project itself; for every other
// project it supplies the final fallback tier.
func resolveProject(p Project, authTier *ProjectCredentials) (ProjectCredentials, error) {
	var creds ProjectCredentials
	var err error

	authURL, authAnon, authService := "", "", ""
	if authTier != nil {
		authURL, authAnon, authService = authTier.URL, authTier.AnonKey, authTier.ServiceKey
	}

	names := envNames(p)

	creds.URL, err = resolveChain(names.url, authURL)
	if err != nil {
		return ProjectCredentials{}, err
	}
	creds.AnonKey, err = resolveChain(names.anonKey, authAnon)
	if err != nil {
		return ProjectCredentials{}, err
	}
	creds.ServiceKey, err = resolveChain(names.serviceKey, authService)
	if err != nil {
		return ProjectCredentials{}, err
	}

	return creds, nil
}

type projectEnvNames struct {
	url, anonKey, serviceKey [2]string
}

// envNames returns, per value, the explicit variable followed by the shared
// fallback variable. The default project has no explicit tier of its own.
func envNames(p Project) projectEnvNames {
	switch p {
	case ProjectAuth:
		return projectEnvNames{
			url:        [2]string{EnvAuthURL, EnvDataURL},
			anonKey:    [2]string{EnvAuthAnonKey, EnvDataAnonKey},
			serviceKey: [2]string{EnvAuthServiceKey, EnvDataServiceKey},
		}
	case ProjectCustomer:
		return projectEnvNames{
			url:        [2]string{EnvCustomerURL, EnvDataURL},
			anonKey:    [2]string{EnvCustomerAnonKey, EnvDataAnonKey},
			serviceKey: [2]string{EnvCustomerServiceKey, EnvDataServiceKey},
		}
	case ProjectVendor:
		return projectEnvNames{
			url:        [2]string{EnvVendorURL, EnvDataURL},
			anonKey:    [2]string{EnvVendorAnonKey, EnvDataAnonKey},
			serviceKey: [2]string{EnvVendorServiceKey, EnvDataServiceKey},
		}
	default:
		return projectEnvNames{
			url:        [2]string{EnvDataURL, EnvDataURL},
			anonKey:    [2]string{EnvDataAnonKey, EnvDataAnonKey},
			serviceKey: [2]string{EnvDataServiceKey, EnvDataServiceKey},
		}
	}
}

// resolveChain reads the explicit and shared variables for one value and
// applies Resolve twice: once across the two environment tiers, then across
// the result and the auth tier. The MissingError always names the explicit
// variable.
func resolveChain(vars [2]string, authValue string) (string, error) {
	v, err := Resolve(vars[0], os.Getenv(vars[0]), os.Getenv(vars[1]))
	if err == nil {
		return v, nil
	}
	return Resolve(vars[0], "", authValue)
}

// parseEnabled interprets the admin feature gate. Only an affirmative value
// enables; unset, blank, and anything unrecognized disable.
func parseEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// mask truncates key material for display.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 6 {
		return "******"
	}
	return secret[:6] + "..."
}
