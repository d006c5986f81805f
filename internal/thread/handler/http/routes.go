package http

import (
	stdhttp "net/http"

	"go.uber.org/zap"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
)

func (h *Handler) Routes() stdhttp.Handler {
	mux := stdhttp.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})

	mux.HandleFunc("GET /threads/{post}", h.GetThread)
	mux.HandleFunc("POST /threads/{post}/replies", h.PostReply)
	mux.HandleFunc("DELETE /comments/{id}", h.DeleteComment)
	mux.HandleFunc("GET /comments/{id}/subtree", h.GetSubtree)
	mux.HandleFunc("GET /comments/{id}/path", h.GetPath)

	return h.sessionTokenMiddleware(h.requestLogMiddleware(mux))
}

// sessionTokenMiddleware lifts X-Session-Token into the request context for
// the identity collaborator.
func (h *Handler) sessionTokenMiddleware(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if token := r.Header.Get("X-Session-Token"); token != "" {
			r = r.WithContext(identity.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	stdhttp.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

func (h *Handler) requestLogMiddleware(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		sw := &statusWriter{ResponseWriter: w, status: stdhttp.StatusOK}
		next.ServeHTTP(sw, r)

		h.logger.Info("request handled",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", sw.status),
		)
	})
}
