// Package domain contains the request-scoped concepts of the conversion
// service: uploads, results, tracing options and error kinds.
// Keep this package free of transport (HTTP) and infrastructure (vtracer, logging) concerns.
package domain
