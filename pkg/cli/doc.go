// Package cli implements the admind command line interface: serving the
// admin API, generating a server settings file, and inspecting the resolved
// configuration.
//
// Data-service credentials come exclusively from ADMIND_* environment
// variables; the settings file and flags cover only the HTTP server itself
// (port, timeouts, logging, CORS). Key material never lives on disk.
package cli
