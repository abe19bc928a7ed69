// Package mockapi is a small JSON API for exercising datasvc
// connections: a user collection, a cookie session, a 401 protected
// route and downloadable reports.
//
// The API runs in process for tests,
//
//	srv := httptest.NewServer(mockapi.New(mockapi.NewStore()))
//
// or standalone through cmd/mockapi with graceful shutdown:
//
//	srv := mockapi.NewServer(handler, mockapi.WithHost(":8080"))
//	err := srv.Run(ctx)
package mockapi
