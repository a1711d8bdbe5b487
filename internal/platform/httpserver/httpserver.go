package httpserver

import (
	"net/http"
	"time"
)

const defaultWriteTimeout = 30 * time.Second

// New builds the account service http.Server. The write timeout always leaves
// room for the longest handler deadline so aggregated responses are not cut
// off mid-write.
func New(addr string, handler http.Handler, handlerDeadline time.Duration) *http.Server {
	write := defaultWriteTimeout
	if floor := handlerDeadline + 5*time.Second; floor > write {
		write = floor
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
