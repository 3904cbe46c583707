// Package main provides the entry point for the precureplaylist application.
//
// precureplaylist exports music playlists as Precure playlist documents and
// imports those documents back, from the command line or over HTTP.
package main

import cmd "github.com/toozej/precureplaylist/cmd/precureplaylist"

// main is the entry point of the precureplaylist application.
// It delegates execution to the cmd package which handles all
// command-line interface functionality.
func main() {
	cmd.Execute()
}
