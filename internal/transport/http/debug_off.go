//go:build !debug

package http

// debugRoutes reports whether the introspection endpoints are compiled in.
// Build with -tags debug to enable them.
const debugRoutes = false
