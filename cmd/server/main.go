package main

import (
	"context"
	"crypto/tls"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/conquest/internal/auth"
	"github.com/example/conquest/internal/config"
	srv "github.com/example/conquest/internal/server"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	var (
		httpPort  = flag.String("http-port", "8080", "HTTP port")
		httpsPort = flag.String("https-port", "8443", "HTTPS port")
		certFile  = flag.String("cert", "", "Path to certificate file")
		keyFile   = flag.String("key", "", "Path to private key file")
		tlsOnly   = flag.Bool("tls-only", false, "Only serve HTTPS")
	)
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.FromEnv()
	tokens := auth.NewTokenConfig(cfg.AuthSecret)
	ipFilter := auth.NewIPFilter(cfg.IPAllowlist, cfg.IPDenylist, cfg.WhitelistMode, log.Logger)
	gs := srv.NewGameServer(cfg.MaxPlayers, log.Logger)

	r := mux.NewRouter()

	// Connection policy runs before everything else.
	r.Use(ipFilter.Middleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if req.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/ping", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	}).Methods("GET")

	r.HandleFunc("/ws", gs.HandleWS)

	// Debug REST endpoints (protected)
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(tokens.AuthMiddleware)
	protected.HandleFunc("/rooms", gs.HandleListRooms).Methods("GET")

	// Room URLs resolve to the SPA entry point; the client reads the room
	// id from the path.
	index := filepath.Join(cfg.PublicDir, "index.html")
	r.HandleFunc("/{room:[a-z]{4}}", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, index)
	}).Methods("GET")
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.PublicDir)))

	// Broadcast shutdown to connected players before exiting.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{Addr: ":" + *httpPort, Handler: r}
	httpsServer := &http.Server{
		Addr:    ":" + *httpsPort,
		Handler: r,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	serveTLS := *certFile != "" && *keyFile != ""
	if serveTLS {
		go func() {
			log.Info().Str("addr", httpsServer.Addr).Msg("HTTPS listening")
			if err := httpsServer.ListenAndServeTLS(*certFile, *keyFile); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("HTTPS server failed")
			}
		}()
	} else if *tlsOnly {
		log.Fatal().Msg("tls-only mode requires -cert and -key")
	}

	if *tlsOnly {
		// Plain HTTP only redirects to the TLS listener.
		httpServer.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			host := req.Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			target := "https://" + host + ":" + *httpsPort + req.URL.RequestURI()
			http.Redirect(w, req, target, http.StatusMovedPermanently)
		})
	}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-shutdown
	log.Info().Msg("shutting down")
	gs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
	if serveTLS {
		httpsServer.Shutdown(ctx)
	}
}
