// Package http contains the HTTP transport layer: chi routers, request
// validation, and the JSON rendering of the dashboard views. Handlers stay
// thin; all aggregation lives in the services layer.
package http
