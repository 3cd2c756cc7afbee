// Package serverlite provides an in-memory chat backend for E2E testing and local demos.
// Claim tokens it receives are opened with the claimopener SDK.
package serverlite

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/chatclaim/internal/application/dto"
	"github.com/turtacn/chatclaim/pkg/constants"
	"github.com/turtacn/chatclaim/sdk/go/claimopener"
)

// Server is a lightweight, in-memory chat backend.
type Server struct {
	HttpServer *http.Server
	router     *gin.Engine
	opener     *claimopener.Opener

	mu      sync.Mutex
	history map[string][]dto.ChatMessage
	claims  []*claimopener.Claim
	seq     int
}

// NewServer creates and configures a new server. When privateKey is nil, claim tokens are
// not opened and requests are accepted with or without one.
func NewServer(addr string, privateKey *rsa.PrivateKey) *Server {
	router := gin.New()
	s := &Server{
		router:  router,
		history: make(map[string][]dto.ChatMessage),
	}
	if privateKey != nil {
		s.opener = claimopener.NewOpener(privateKey)
	}

	router.GET("/health", s.healthCheck)
	router.POST(constants.ChatPath, s.chat)
	router.GET(constants.ChatHistoryPath+":studentId", s.chatHistory)

	s.HttpServer = &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return s
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server in a goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.HttpServer.Shutdown(ctx)
}

// Claims returns the decrypted claims received so far.
func (s *Server) Claims() []*claimopener.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*claimopener.Claim, len(s.claims))
	copy(out, s.claims)
	return out
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message and studentId are required"})
		return
	}

	if token := c.GetHeader(constants.ClaimTokenHeader); token != "" && s.opener != nil {
		claim, err := s.opener.Open(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid claim token: " + err.Error()})
			return
		}
		s.mu.Lock()
		s.claims = append(s.claims, claim)
		s.mu.Unlock()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	reply := "echo: " + req.Message

	s.mu.Lock()
	s.history[req.StudentID] = append(s.history[req.StudentID],
		s.message("user", req.Message, now),
		s.message("assistant", reply, now),
	)
	s.mu.Unlock()

	c.JSON(http.StatusOK, dto.ChatResponse{Response: reply, Timestamp: now})
}

func (s *Server) chatHistory(c *gin.Context) {
	s.mu.Lock()
	messages := append([]dto.ChatMessage{}, s.history[c.Param("studentId")]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, messages)
}

// message must be called with s.mu held.
func (s *Server) message(kind, content, timestamp string) dto.ChatMessage {
	s.seq++
	return dto.ChatMessage{
		ID:        fmt.Sprintf("msg-%d", s.seq),
		Type:      kind,
		Content:   content,
		Timestamp: timestamp,
	}
}
