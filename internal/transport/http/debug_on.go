//go:build debug

package http

const debugRoutes = true
