package server

type Option func(s *Server)

// WithPort sets the port the server listens on. An empty port falls back to
// the default.
func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}
