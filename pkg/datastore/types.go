// Package datastore provisions the template's backing store behind one
// contract: every strategy yields connection credentials and may apply
// schema and seed data. A failed provision returns a best-effort config
// plus warnings, never an error that would stop the pipeline — the operator
// can always finish by hand.
package datastore

// Strategy is the closed set of auth/datastore backends.
type Strategy string

const (
	// StrategyLocalContainer runs the managed service locally in containers.
	StrategyLocalContainer Strategy = "local-container"
	// StrategyRemoteManaged links an existing hosted project.
	StrategyRemoteManaged Strategy = "remote-managed"
	// StrategyEmbedded uses a local SQLite file, no external service.
	StrategyEmbedded Strategy = "embedded"
)

// Managed reports whether the strategy uses the managed auth service.
func (s Strategy) Managed() bool {
	return s == StrategyLocalContainer || s == StrategyRemoteManaged
}

// Relational reports whether the schema/seed step applies.
func (s Strategy) Relational() bool {
	return s == StrategyLocalContainer || s == StrategyRemoteManaged
}

// Config is the provisioned connection material. It is consumed immediately
// by the environment generator and then discarded; persistence is the
// generated file's job, not ours.
type Config struct {
	Strategy         Strategy
	EndpointURL      string
	ReadCredential   string
	WriteCredential  string
	ConnectionString string
	DashboardURL     string

	// Warnings collects everything that degraded to a default or
	// placeholder, for end-of-run messaging.
	Warnings []string

	// Seeded is set by the schema/seed step for end-of-run messaging.
	Seeded bool
}

// Placeholder returns a config filled with documented defaults for the
// strategy, used when provisioning could not complete.
func Placeholder(s Strategy, warnings ...string) *Config {
	cfg := &Config{Strategy: s, Warnings: warnings}
	switch s {
	case StrategyLocalContainer:
		cfg.EndpointURL = defaultLocalAPIURL
		cfg.ReadCredential = placeholderValue
		cfg.WriteCredential = placeholderValue
		cfg.ConnectionString = defaultLocalDBURL
		cfg.DashboardURL = defaultLocalStudioURL
	case StrategyRemoteManaged:
		cfg.EndpointURL = placeholderValue
		cfg.ReadCredential = placeholderValue
		cfg.WriteCredential = placeholderValue
		cfg.ConnectionString = placeholderValue
	case StrategyEmbedded:
		cfg.ConnectionString = "file:data/app.db"
	}
	return cfg
}

const placeholderValue = "CHANGE_ME"
