package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markqiu/red-blud-eyes/sim/remote"
	"github.com/markqiu/red-blud-eyes/sim/session"
)

var (
	serveHost        string // Listen host
	servePort        int    // Listen port
	webDir           string // Static front-end directory
	serveConcurrency int    // Parallel decisions within a day
)

// serveCmd hosts the interactive demo: JSON API, metrics and static UI
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive demo API and web UI",
	Run: func(cmd *cobra.Command, args []string) {
		if level, _ := logrus.ParseLevel(logLevel); level < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		// WEB_HOST and WEB_PORT may come from the .env file, which is only
		// loaded once the command starts.
		if !cmd.Flags().Changed("host") {
			serveHost = envOr("WEB_HOST", serveHost)
		}
		if !cmd.Flags().Changed("port") {
			if p, err := strconv.Atoi(envOr("WEB_PORT", "")); err == nil {
				servePort = p
			}
		}

		password := os.Getenv("APP_PASSWORD")
		if password == "" {
			password = defaultPassword
		}
		defaultStyle := remote.Social
		if s := os.Getenv("OPENAI_STYLE"); s != "" {
			st, err := remote.ParseStyle(s)
			if err != nil {
				logrus.Fatalf("Invalid OPENAI_STYLE: %v", err)
			}
			defaultStyle = st
		}

		sess := session.New(session.WithDefaultStyle(defaultStyle), session.WithConcurrency(serveConcurrency))
		srv := &http.Server{
			Addr:              net.JoinHostPort(serveHost, strconv.Itoa(servePort)),
			Handler:           newRouter(sess, password, webDir),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logrus.Warnf("Serving UI+API on http://%s (web dir: %s)", srv.Addr, webDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Listen host (default from WEB_HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Listen port (default from WEB_PORT)")
	serveCmd.Flags().StringVar(&webDir, "web-dir", "web", "Directory of the static front end")
	serveCmd.Flags().IntVar(&serveConcurrency, "concurrency", 4, "Decisions evaluated in parallel within a day")
	rootCmd.AddCommand(serveCmd)
}
