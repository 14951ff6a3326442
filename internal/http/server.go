package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the gin engine in an http.Server with explicit timeouts;
// gin's own Run leaves them unset, which lets slow clients pin connections.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
