/*
Package auditor implements a registry auditor service: it follows a
registry server's input-msg events from the roster onward, and checks
the server's published commitments against the replayed history.
*/
package auditor
