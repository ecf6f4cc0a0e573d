// Package protocol owns the Kernel <-> Frontend wire contract.
//
// Ownership boundary:
// - command registry (identifier -> payload shape)
// - typed payload records
// - per-command encoders and decoders
//
// A Message is one identifier byte followed by the payload whose shape that
// identifier fixes. Message boundaries are the transport's concern; see
// package frame for the stream framing used by logowire transports.
package protocol
