package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/ingest"
	"github.com/poiesic/faqbot/match"
	"github.com/poiesic/faqbot/storage"
)

const defaultMaxRequestSize = 1 << 20 // 1 MiB

// Server holds dependencies for the HTTP handlers.
type Server struct {
	faqRepository storage.FaqRepository
	engine        *match.Engine
	pipeline      *ingest.Pipeline
	logger        *slog.Logger
}

// NewServer creates a new Server.
func NewServer(faqRepository storage.FaqRepository, engine *match.Engine, pipeline *ingest.Pipeline, logger *slog.Logger) (*Server, error) {
	if faqRepository == nil {
		return nil, ErrFaqRepositoryRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		faqRepository: faqRepository,
		engine:        engine,
		pipeline:      pipeline,
		logger:        logger.With("component", "web"),
	}, nil
}

// Router builds the gin router with all API routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware(s.logger))
	router.Use(RequestSizeLimitMiddleware(defaultMaxRequestSize))

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		SendError(c, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method "+c.Request.Method+" not allowed on "+c.Request.URL.Path)
	})

	router.GET("/health", s.HealthHandler)

	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/chatbot/", s.ChatbotHandler)
		apiRoutes.POST("/add-faq/", s.AddFaqHandler)

		faqRoutes := apiRoutes.Group("/faqs")
		{
			faqRoutes.GET("/", s.ListFaqsHandler)
			faqRoutes.GET("/:id", s.GetFaqHandler)
			faqRoutes.DELETE("/:id", s.DeleteFaqHandler)
		}
	}

	return router
}

// ChatRequest is the request body for the chatbot endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the chatbot endpoint's answer payload.
type ChatResponse struct {
	Answer    string            `json:"answer"`
	ExtraData map[string]string `json:"extra_data"`
}

// ChatbotHandler answers a question from the FAQ knowledge base.
// Returns the fallback answer when no FAQ matches.
func (s *Server) ChatbotHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON in request body: "+err.Error())
		return
	}

	if core.NormalizeText(req.Question) == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Field 'question' is required")
		return
	}

	snapshot, err := s.faqRepository.Snapshot(c.Request.Context())
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Failed to load knowledge base: "+err.Error())
		return
	}

	verdict, err := s.engine.Match(c.Request.Context(), req.Question, snapshot)
	if err != nil {
		if errors.Is(err, match.ErrEmbeddingUnavailable) {
			SendError(c, http.StatusServiceUnavailable, ErrorCodeEmbeddingUnavailable,
				"Embedding service unavailable: "+err.Error())
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Matching failed: "+err.Error())
		return
	}

	if !verdict.Matched {
		c.JSON(http.StatusOK, &ChatResponse{
			Answer:    match.FallbackAnswer,
			ExtraData: map[string]string{},
		})
		return
	}

	extraData := verdict.Record.Metadata
	if extraData == nil {
		extraData = map[string]string{}
	}
	c.JSON(http.StatusOK, &ChatResponse{
		Answer:    verdict.Record.Answer,
		ExtraData: extraData,
	})
}

// AddFaqRequest is the request body for creating an FAQ.
type AddFaqRequest struct {
	Question  string            `json:"question"`
	Answer    string            `json:"answer"`
	Category  string            `json:"category"`
	ExtraData map[string]string `json:"extra_data"`
}

// FaqResponse is the API representation of an FAQ record.
type FaqResponse struct {
	ID        string            `json:"id"`
	Question  string            `json:"question"`
	Answer    string            `json:"answer"`
	Category  string            `json:"category"`
	ExtraData map[string]string `json:"extra_data,omitempty"`
	Embedded  bool              `json:"embedded"`
	CreatedAt time.Time         `json:"created_at"`
}

func faqResponse(record *core.FaqRecord) *FaqResponse {
	return &FaqResponse{
		ID:        strconv.FormatUint(uint64(record.Id), 10),
		Question:  record.Question,
		Answer:    record.Answer,
		Category:  record.Category,
		ExtraData: record.Metadata,
		Embedded:  len(record.Vector) > 0,
		CreatedAt: record.InsertedAt,
	}
}

// AddFaqHandler adds a new FAQ to the knowledge base and schedules its
// question for embedding.
func (s *Server) AddFaqHandler(c *gin.Context) {
	var req AddFaqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON in request body: "+err.Error())
		return
	}

	record := &core.FaqRecord{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Metadata: req.ExtraData,
	}
	if record.Category == "" {
		record.Category = "general"
	}

	var err error
	if s.pipeline != nil {
		err = s.pipeline.Ingest(c.Request.Context(), record)
	} else {
		_, err = s.faqRepository.AddFaqs(c.Request.Context(), record)
	}

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			SendError(c, http.StatusConflict, ErrorCodeFaqExists,
				"An FAQ with this question already exists")
		case errors.Is(err, core.ErrInvalidFaqRecord):
			SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		default:
			SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
				"Failed to add FAQ: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, faqResponse(record))
}

// ListFaqsHandler lists the full knowledge base in snapshot order.
func (s *Server) ListFaqsHandler(c *gin.Context) {
	snapshot, err := s.faqRepository.Snapshot(c.Request.Context())
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Failed to load knowledge base: "+err.Error())
		return
	}

	faqs := make([]*FaqResponse, len(snapshot))
	for i, record := range snapshot {
		faqs[i] = faqResponse(record)
	}

	c.JSON(http.StatusOK, gin.H{
		"faqs":  faqs,
		"count": len(faqs),
	})
}

// GetFaqHandler retrieves a single FAQ by ID.
func (s *Server) GetFaqHandler(c *gin.Context) {
	id, ok := parseFaqID(c)
	if !ok {
		return
	}

	record, err := s.faqRepository.GetFaq(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			SendError(c, http.StatusNotFound, ErrorCodeFaqNotFound,
				"FAQ '"+c.Param("id")+"' not found")
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Failed to get FAQ: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, faqResponse(record))
}

// DeleteFaqHandler removes an FAQ by ID.
func (s *Server) DeleteFaqHandler(c *gin.Context) {
	id, ok := parseFaqID(c)
	if !ok {
		return
	}

	if err := s.faqRepository.DeleteFaqs(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			SendError(c, http.StatusNotFound, ErrorCodeFaqNotFound,
				"FAQ '"+c.Param("id")+"' not found")
			return
		}
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Failed to delete FAQ: "+err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// HealthHandler reports service liveness.
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func parseFaqID(c *gin.Context) (core.ID, bool) {
	raw, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Invalid FAQ id '"+c.Param("id")+"'")
		return 0, false
	}
	return core.ID(raw), true
}
