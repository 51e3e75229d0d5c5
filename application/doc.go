/*
Package application is a library for building registry clients and
servers that speak the spymsg protocol.

application implements the server- and client-side application-layer
components of the flag registry: the network layer of a registry
server and the configuration and message helpers its clients use.

Encoding

This module implements the message encoding and decoding for client-server
communications. Currently this module only supports JSON encoding.

Config

Application configs are read from TOML or YAML files, then
overridden by SPYMSG_* environment variables and validated.

Logger

This module implements a generic logging system that can be used by any
registry application/executable.

ServerBase

This module provides an API for implementing any registry server-side
functionality: listening on unix sockets and TLS connections,
serializing writes against reads, and exposing Prometheus metrics.
*/
package application
