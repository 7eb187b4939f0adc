// Package cli maps the flightderive command line onto an app.Config and
// turns usage errors into process exit codes.
package cli
