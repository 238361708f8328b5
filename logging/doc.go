/*
Package logging offers a client for emitting log entries from Tarmac WebAssembly
components to the host runtime.

Each level (Info, Warn, Error, Debug, Trace) is a host function of the
"logging" capability. Structured context is passed as Ctx maps and rendered
into the message as sorted key=value pairs, so the host only ever receives
plain text.
*/
package logging
