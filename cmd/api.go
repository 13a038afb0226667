package cmd

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/markqiu/red-blud-eyes/sim"
	"github.com/markqiu/red-blud-eyes/sim/session"
)

// defaultPassword is used when APP_PASSWORD is unset.
const defaultPassword = "redblue"

// newRouter wires the JSON API, metrics and, when webDir exists, the static
// front end.
func newRouter(s *session.Session, password, webDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		api.GET("/state", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "state": s.State()})
		})
		api.POST("/verify_password", handleVerifyPassword(password))
		api.POST("/init", handleInit(s))
		api.POST("/announce", func(c *gin.Context) {
			respond(c, s.Announce)
		})
		api.POST("/next", func(c *gin.Context) {
			respond(c, func() (*session.State, error) { return s.Advance(c.Request.Context()) })
		})
		api.POST("/run_all", func(c *gin.Context) {
			respond(c, func() (*session.State, error) { return s.RunToCompletion(c.Request.Context()) })
		})
		api.POST("/reset", func(c *gin.Context) {
			s.Reset()
			c.JSON(http.StatusOK, gin.H{"ok": true, "state": nil})
		})
	}

	var files http.Handler
	if fi, err := os.Stat(webDir); err == nil && fi.IsDir() {
		files = http.FileServer(http.Dir(webDir))
	} else if webDir != "" {
		logrus.Warnf("web directory %s not found; serving the API only", webDir)
	}
	router.NoRoute(func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Unknown API endpoint"})
			return
		}
		c.Header("Cache-Control", "no-store")
		files.ServeHTTP(c.Writer, c.Request)
	})
	return router
}

func handleVerifyPassword(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Password string `json:"password"`
		}
		if !bindOptional(c, &body) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "valid": body.Password == password})
	}
}

func handleInit(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req session.InitRequest
		if !bindOptional(c, &req) {
			return
		}
		respond(c, func() (*session.State, error) { return s.Init(req) })
	}
}

// bindOptional decodes a JSON body into dst; an empty body leaves dst
// zero. It writes a 400 and returns false on malformed input.
func bindOptional(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// respond runs op and writes the {ok, state|error} envelope.
func respond(c *gin.Context, op func() (*session.State, error)) {
	st, err := op()
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logrus.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": st})
}

// statusFor maps caller mistakes to 400 and everything else, such as a
// missing API key, to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotInitialized),
		errors.Is(err, session.ErrInvalidRequest),
		errors.Is(err, sim.ErrInvalidPopulation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs the start and end of every API call.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		start := time.Now()
		logrus.Infof("[API] start %s %s", c.Request.Method, c.Request.URL.Path)
		c.Next()
		logrus.Infof("[API] end   %s %s %d (%dms)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
