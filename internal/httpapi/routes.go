package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/hub"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/identity"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/metrics"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/store"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/ws"
)

// SetupRoutes builds the router with the hub injected. The store may be nil:
// the realtime core runs without persistence, it just loses the REST
// surface.
func SetupRoutes(h *hub.Hub, st *store.Store, ids identity.Resolver, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(h, log, m))

	if st != nil && ids != nil {
		api := &API{Store: st, Identity: ids, Log: log}
		r.Route("/boards", func(r chi.Router) {
			r.Use(api.RequireUser)
			r.Post("/", api.CreateBoard)
			r.Get("/", api.ListBoards)
			r.Route("/{boardID}", func(r chi.Router) {
				r.Get("/", api.GetBoard)
				r.Patch("/", api.RenameBoard)
				r.Delete("/", api.DeleteBoard)
				r.Get("/elements", api.ListElements)
				r.Put("/elements/{elementID}", api.SaveElement)
				r.Delete("/elements/{elementID}", api.DeleteElement)
				r.Get("/collaborators", api.ListCollaborators)
				r.Post("/collaborators", api.AddCollaborator)
				r.Delete("/collaborators/{userID}", api.RemoveCollaborator)
			})
		})
	}
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
