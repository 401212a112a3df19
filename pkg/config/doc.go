// Package config resolves the credentials and server settings admind runs
// with.
//
// Credentials for the four logical data-service projects (auth, customer,
// vendor, default) are resolved from environment variables through a layered
// fallback chain and snapshotted once at startup:
//
//	explicit per-project variable (ADMIND_AUTH_URL, ADMIND_VENDOR_ANON_KEY, ...)
//	→ shared variable (ADMIND_DATA_URL, ...)
//	→ the auth project's own resolved value (non-auth projects only)
//
// A blank (whitespace-only) value counts as unset at every tier. When a chain
// is exhausted, Load fails with a MissingError naming the primary variable, so
// a misconfigured deployment dies loudly at startup instead of limping along
// with empty credentials.
//
// Server settings (port, timeouts, log level, CORS origins) come from an
// optional YAML file:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := config.LoadServerFile("admind.yaml")
//
// The resulting Config is immutable; components receive it by injection and
// never read the environment themselves.
package config
