// Package cli is the interactive LogiTrack console.
//
// NewApp wires the local SQLite cache, the gRPC client and the services;
// App.Run prompts for a login and then reads commands until "exit". A
// background watcher pings the server and switches between online and
// offline mode. Offline, container and booking listings come from the
// cache and everything else reports that a connection is needed.
//
// help only lists commands the signed-in role may run. That is a
// convenience: the server checks every call on its own.
package cli
