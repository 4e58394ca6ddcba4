package server

import (
	"errors"
	"log/slog"
	"net/http"

	"e5_server/embedding"

	"github.com/gin-gonic/gin"
)

// EmbedHandle serves POST /embed
func (s *Server) EmbedHandle(c *gin.Context) {
	var req EmbedRequest
	if err := BindJSON(c, &req); err != nil {
		s.rejectRequest(c, err, msgMissingText)
		return
	}

	kind := embedding.ParseKind(req.Type)
	if req.Type != "" && embedding.ConflictsWith(*req.Text, kind) {
		slog.Debug("Explicit prefix overrides request type", "type", req.Type, "request_id", requestID(c))
	}
	text := embedding.ApplyPrefix(*req.Text, kind)

	vectors, err := s.model.Encode(c.Request.Context(), []string{text})
	if err != nil {
		s.failRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, EmbedResponse{Embedding: vectors[0]})
}

// BatchHandle serves POST /batch. All texts go to the model in one call.
func (s *Server) BatchHandle(c *gin.Context) {
	var req BatchRequest
	if err := BindJSON(c, &req); err != nil {
		s.rejectRequest(c, err, msgMissingTexts)
		return
	}

	kind := embedding.ParseKind(req.Type)
	texts := embedding.ApplyPrefixes(req.Texts, kind)

	vectors, err := s.model.Encode(c.Request.Context(), texts)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	slog.Debug("Encoded batch", "texts", len(texts), "type", string(kind), "request_id", requestID(c))
	c.JSON(http.StatusOK, BatchResponse{Embeddings: vectors})
}

// HealthHandle serves GET /health. The model is loaded before the server
// starts, so this always reports ok.
func (s *Server) HealthHandle(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Model:     s.model.Name(),
		Dimension: s.model.Dimension(),
	})
}

func (s *Server) rejectRequest(c *gin.Context, err error, missingMsg string) {
	msg := msgInvalidJSON
	if errors.Is(err, errMissingField) {
		msg = missingMsg
	}
	slog.Warn("Failed to parse user request", "path", c.Request.URL.Path, "error", err, "request_id", requestID(c))
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func (s *Server) failRequest(c *gin.Context, err error) {
	slog.Error("Failed to encode", "path", c.Request.URL.Path, "error", err, "request_id", requestID(c))
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
}
