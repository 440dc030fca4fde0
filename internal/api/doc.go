// Package api provides the HTTP REST API of the designer.
//
// Every route lives under /api/v1. /health and /metrics are public; all
// other routes need a bearer token issued by `designer token`. Project
// routes are scoped to the token subject unless the token carries the
// admin role.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
