// Package httpserver builds the ledger's HTTP server with its timeout policy
// in one place.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the staking API. Requests and responses are small
// JSON bodies, so the write timeout is deliberately tight; slow clients get
// cut rather than holding a ledger worker.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
