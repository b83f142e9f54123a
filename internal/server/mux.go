package server

import "net/http"

// NewMux wires the endpoints. findings may be nil when no results database is configured.
func NewMux(sw *Swatches, findings *FindingsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/api/derive/", WithCORS(sw.DeriveHandler()))
	mux.Handle("/swatch/", WithCORS(sw.SwatchHandler()))

	if findings != nil {
		mux.Handle("/api/findings", WithCORS(findings.Handler()))
	}

	return mux
}

// WithCORS allows browser pages on other origins to call the read-only endpoints.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
