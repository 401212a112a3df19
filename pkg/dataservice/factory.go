package dataservice

import (
	"github.com/scraphq/admind/pkg/config"
)

// Factory builds clients from the resolved configuration snapshot.
type Factory struct {
	cfg  *config.Config
	opts []Option
}

// NewFactory creates a factory. opts apply to every client it builds.
func NewFactory(cfg *config.Config, opts ...Option) *Factory {
	return &Factory{cfg: cfg, opts: opts}
}

// ServiceClient returns a privileged client for a logical project: the
// project's service key authorizes every request. All administrative reads
// and writes go through service clients.
func (f *Factory) ServiceClient(p config.Project) (*Client, error) {
	creds, err := f.cfg.Project(p)
	if err != nil {
		return nil, err
	}
	return New(creds.URL, creds.ServiceKey, f.opts...), nil
}

// BearerClient returns a client that authenticates as the anonymous role but
// carries the caller's JWT as the bearer credential. It is always scoped to
// the auth project — the issuer — regardless of which project hosts the data,
// so identity verification cannot be answered by a non-issuing project.
func (f *Factory) BearerClient(jwt string) (*Client, error) {
	creds, err := f.cfg.Project(config.ProjectAuth)
	if err != nil {
		return nil, err
	}
	opts := append([]Option{WithBearer(jwt)}, f.opts...)
	return New(creds.URL, creds.AnonKey, opts...), nil
}

// tableProjects assigns each table to the logical project hosting it.
var tableProjects = map[string]config.Project{
	"profiles":     config.ProjectAuth,
	"vendors":      config.ProjectVendor,
	"scrap_types":  config.ProjectDefault,
	"scrap_rates":  config.ProjectDefault,
	"site_stats":   config.ProjectCustomer,
	"testimonials": config.ProjectCustomer,
}

// ProjectForTable returns the logical project hosting table. Unknown tables
// go to the default project.
func ProjectForTable(table string) config.Project {
	if p, ok := tableProjects[table]; ok {
		return p
	}
	return config.ProjectDefault
}

// TableClient returns a privileged client for the project hosting table.
func (f *Factory) TableClient(table string) (*Client, error) {
	return f.ServiceClient(ProjectForTable(table))
}
