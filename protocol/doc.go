/*
Package protocol is a library for building compatible registry clients
and servers.

protocol implements the shared pieces of the flag registry: the payload
rules every accepted update must satisfy, the commitment value that
attests to the registry's content, and the messages exchanged between a
client and the server that hosts the registry.

Rules

This module implements the payload rule check. The six least significant
bits of a payload are flags 1 through 6, and a payload is acceptable only
if flag 1 excludes all other flags, flag 2 requires flag 3, and flag 4
excludes flags 5 and 6. Bits above the sixth are application data and are
not inspected.

Error

This module defines the constants representing the types
of errors that a registry server may return to a client.

Message

This module defines the message format of the client requests
and corresponding server responses, and constructors for the
response messages.

Event

This module defines the notification emitted for every accepted
input message.
*/
package protocol
