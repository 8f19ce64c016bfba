package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/importer"
	"Aquaquote/internal/calc/tanks"
	"Aquaquote/internal/config"
	"Aquaquote/internal/engine"
	"Aquaquote/internal/limit"
	"Aquaquote/internal/metrics"
	"Aquaquote/internal/repo"
	"Aquaquote/internal/session"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

const (
	sweepInterval = time.Minute
	limiterIdle   = 10 * time.Minute
)

func HandleList(ctx context.Context, mux *mux.Router, eng *engine.Engine, limiter *limit.IPRateLimiter, reg *prometheus.Registry, sessionTTL time.Duration) {
	rec := metrics.New(reg)
	cat := eng.Catalog()

	mux.Handle("/metrics", metrics.Handler(reg)).Methods("GET")
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	flowH := &flow.Handler{Conversion: cat.Flow()}
	tanksH := &tanks.Handler{Conversion: cat.Flow(), Coefficients: cat.Tanks()}
	quoteH := &engine.Handler{Engine: eng}
	importH := &importer.Handler{Engine: eng}
	sessionH := &session.Handler{Store: session.NewStore(eng), Metrics: rec}

	api.HandleFunc("/tools/flow/calc", flowH.Calc).Methods("POST")
	api.HandleFunc("/tools/tanks/calc", tanksH.Calc).Methods("POST")
	api.HandleFunc("/tools/quote/calc", quoteH.Calc).Methods("POST")
	api.HandleFunc("/tools/quote/batch", importH.Batch).Methods("POST")
	api.HandleFunc("/tools/quote/import", importH.Import).Methods("POST")
	api.HandleFunc("/catalog", quoteH.Catalog).Methods("GET")
	sessionH.Routes(api)

	go sessionH.Expire(ctx, sweepInterval, sessionTTL)
	go limiter.Run(ctx, sweepInterval, limiterIdle)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	cat, source, err := repo.LoadCatalog(loadCtx, cfg.CatalogDSN, cfg.CatalogPath)
	loadCancel()
	if err != nil {
		log.Fatalf("Catalog error: %v", err)
	}
	log.Printf("Loaded %d catalog items from %s", cat.Len(), source)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mux := mux.NewRouter()
	HandleList(ctx, mux, engine.New(cat), limit.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst), reg, cfg.SessionTTL)
	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CombinedLoggingHandler(os.Stdout, CORS(mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on :%s", cfg.Port)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
