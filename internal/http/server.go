package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"health-tracker/internal/core"
	"health-tracker/pkg"
)

// Server bundles the services behind the JSON API. It is the thin I/O wrapper
// around the core pipeline; all domain behavior lives in internal/core.
type Server struct {
	Users    *core.UserService
	CheckIns *core.CheckInService
	Triage   *core.TriageService
	Chat     *core.ChatService
	Reports  *core.ReportService
	Exports  *core.ExportService

	JWTSecret string
	JWTExpire time.Duration
	Log       *zap.Logger
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(mode string) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	api := r.Group("/api", s.authRequired())
	{
		api.GET("/profile", s.handleGetProfile)
		api.PUT("/profile", s.handleUpdateProfile)

		api.POST("/checkins", s.handleCheckIn)
		api.GET("/checkins", s.handleRecentLogs)
		api.GET("/streaks", s.handleStreaks)

		api.POST("/triage", s.handleTriage)
		api.GET("/triage", s.handleTriageHistory)

		api.POST("/chat/messages", s.handleChatMessage)
		api.GET("/chat/sessions/:id/messages", s.handleChatHistory)

		api.GET("/reports", s.handleReport)
		api.GET("/export", s.handleExport)
	}
	return r
}

// authRequired validates the bearer token and stores the user id on the
// request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := parseToken(s.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.Users.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, pkg.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": pkg.ErrEmailTaken.Error()})
			return
		}
		s.Log.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	token, err := issueToken(s.JWTSecret, user.ID, s.JWTExpire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": pkg.ErrInvalidCredentials.Error()})
		return
	}
	token, err := issueToken(s.JWTSecret, user.ID, s.JWTExpire)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.Users.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var p pkg.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Users.UpdateProfile(c.Request.Context(), currentUser(c), &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type checkInRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
	Notes    string `json:"notes"`
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := s.CheckIns.Submit(c.Request.Context(), currentUser(c), req.Symptoms, req.Notes)
	if err != nil {
		s.Log.Error("check-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check-in failed"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleRecentLogs(c *gin.Context) {
	limit := intQuery(c, "limit", 30)
	logs, err := s.CheckIns.Recent(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) handleStreaks(c *gin.Context) {
	summary, err := s.CheckIns.Streaks(c.Request.Context(), currentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load streaks"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type triageRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
}

func (s *Server) handleTriage(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assessment, err := s.Triage.Submit(c.Request.Context(), currentUser(c), req.Symptoms)
	if err != nil {
		s.Log.Error("triage failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "triage failed"})
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleTriageHistory(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	history, err := s.Triage.History(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

type chatRequest struct {
	SessionID int64  `json:"session_id"`
	Content   string `json:"content" binding:"required"`
}

func (s *Server) handleChatMessage(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, session, err := s.Chat.SendMessage(c.Request.Context(), currentUser(c), req.SessionID, req.Content)
	if err != nil {
		if errors.Is(err, pkg.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": pkg.ErrSessionNotFound.Error()})
			return
		}
		s.Log.Error("chat turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "session_id": session.ID, "session_token": session.Token})
}

func (s *Server) handleChatHistory(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	history, err := s.Chat.History(c.Request.Context(), currentUser(c), sessionID)
	if err != nil {
		if errors.Is(err, pkg.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": pkg.ErrSessionNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleReport(c *gin.Context) {
	start := c.Query("start_date")
	end := c.Query("end_date")
	doc, err := s.Reports.Build(c.Request.Context(), currentUser(c), start, end)
	if err != nil {
		s.Log.Error("report build failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	// Callers must handle either shape: PDF bytes when the renderer was
	// available, the HTML source otherwise.
	if doc.PDF != nil {
		c.Header("Content-Disposition", `attachment; filename="health_report.pdf"`)
		c.Data(http.StatusOK, "application/pdf", doc.PDF)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	result, err := s.Exports.Export(c.Request.Context(), currentUser(c), format)
	if err != nil {
		s.Log.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	if result.Unsupported {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format", "format": format})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, []byte(result.Content))
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
