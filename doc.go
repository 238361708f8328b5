/*
Package pgcomponent provides the entry point and runtime configuration for a
Tarmac WebAssembly component that talks to PostgreSQL through the host.

New registers the component handler with waPC; its RuntimeConfig is
shared by the capability clients (pg, logging, metrics). DefaultNamespace
is used when a namespace is not explicitly provided. The host status codes
and sentinel errors in this package are shared by every capability client.
*/
package pgcomponent
