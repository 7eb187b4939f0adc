// Package app wires a flightderive batch together: it loads the selected
// profile, applies command line overrides, loads the node catalog, opens the
// stores and report sinks and hands the discovered flight files to the batch
// orchestrator. It knows nothing about how it was started.
package app
