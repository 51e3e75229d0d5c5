// Package internal holds values shared by the spymsg executables.
package internal

// Version is the version of the spymsg executables.
const Version = "0.1.0"
