/*
Package metrics provides a client for creating custom metrics through the
Tarmac host runtime.

Counter, Gauge and Histogram handles send protobuf payloads over waPC host
calls. Emission follows Prometheus-style ergonomics: Inc, Dec and Observe do
not return errors, and marshal or host-call failures are swallowed so metrics
never change the caller's control flow. An optional Prefix namespaces every
metric name created by a client.
*/
package metrics
