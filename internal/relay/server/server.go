// Package server provides the HTTP server for the conversation relay.
// It mounts the chat endpoint alongside version and health check endpoints,
// and wires CORS handling and middleware for logging, panic recovery, and
// request timeouts.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/casebot/casebot/internal/common/httpx"
	"github.com/casebot/casebot/internal/common/middleware"
	"github.com/casebot/casebot/internal/relay/chat"
	"github.com/casebot/casebot/internal/relay/config"
)

// RelayServer is the HTTP server for the conversation relay.
type RelayServer struct {
	Router  *chi.Mux      // HTTP router for request handling
	chatAPI *chat.ChatAPI // chat endpoint handlers
}

// CreateNewServer creates a new RelayServer serving the given chat API.
func CreateNewServer(api *chat.ChatAPI) (*RelayServer, error) {
	s := &RelayServer{
		Router:  chi.NewRouter(),
		chatAPI: api,
	}
	return s, nil
}

// MountHandlers sets up all HTTP routes and middleware for the server.
// Configures logging, panic handling, request timeouts, CORS, and
// resource endpoints.
func (s *RelayServer) MountHandlers() {
	s.Router.Use(middleware.RequestLogger)
	s.Router.Use(middleware.PanicHandler)
	s.Router.Use(middleware.SetTimeout(config.Config().Server.GetRequestTimeout()))
	if config.Config().Server.HandleCORS {
		s.Router.Use(s.HandleCORS)
	}
	s.mountResourceHandlers(s.Router)
}

// mountResourceHandlers registers all resource endpoints on the router.
func (s *RelayServer) mountResourceHandlers(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		s.chatAPI.Router(r)
	})
	r.Get("/version", s.getVersion)
	r.Get("/ready", s.getReadiness)
}

// GetVersionRsp represents the response for version information.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"` // server version string
	ApiVersion    string `json:"apiVersion"`    // API version string
}

// getVersion handles version information requests.
func (s *RelayServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Casebot Relay Server: " + Version,
		ApiVersion:    chat.Version,
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, rsp)
}

// getReadiness handles health check requests from load balancers and
// monitoring systems.
func (s *RelayServer) getReadiness(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("Readiness check")

	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// HandleCORS provides CORS middleware for cross-origin requests from the
// embedding site. The allowed origin comes from configuration; an unset
// origin allows any site to embed the widget.
func (s *RelayServer) HandleCORS(next http.Handler) http.Handler {
	origin := config.Config().Server.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
		ExposedHeaders:   []string{"X-Casebot-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
