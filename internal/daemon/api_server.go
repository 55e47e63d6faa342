package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"auricle/internal/api"
	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/services"
	"auricle/internal/services/speech"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/feeds", srv.handleListFeeds)
	mux.HandleFunc("POST /api/feeds", srv.handleCreateFeed)
	mux.HandleFunc("POST /api/feeds/preview", srv.handlePreviewFeed)
	mux.HandleFunc("POST /api/feeds/{id}", srv.handleUpdateFeed)
	mux.HandleFunc("GET /api/items", srv.handleListItems)
	mux.HandleFunc("GET /api/items/{id}", srv.handleGetItem)
	mux.HandleFunc("POST /api/items/{id}", srv.handleUpdateItem)
	mux.HandleFunc("POST /api/run/{stage}", srv.handleRunStage)
	mux.HandleFunc("POST /api/audio", srv.handleAudio)
	mux.HandleFunc("GET /api/voices", srv.handleListVoices)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// withRequestID threads a correlation id through every request context so
// handler and stage logs can be tied back to the originating call. A caller
// supplied X-Request-ID is honored, otherwise one is generated.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := services.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("request handled",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(start)))
	})
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *apiServer) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.daemon.store.ListFeeds(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FeedListResponse{Feeds: api.FromFeeds(feeds)})
}

func (s *apiServer) handleCreateFeed(w http.ResponseWriter, r *http.Request) {
	var req api.CreateFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	kind := corpus.FeedKind(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = corpus.FeedRSS
	}
	if kind != corpus.FeedRSS && kind != corpus.FeedSingleURL {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown feed kind %q", req.Kind))
		return
	}

	feed, err := s.daemon.store.NewFeed(r.Context(), req.URL, kind, req.Title, req.Description, req.Tags)
	if errors.Is(err, corpus.ErrDuplicateURL) {
		s.writeError(w, http.StatusBadRequest, "a feed with this url already exists")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FeedResponse{Feed: api.FromFeed(feed)})
}

func (s *apiServer) handlePreviewFeed(w http.ResponseWriter, r *http.Request) {
	var req api.PreviewFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	preview, err := s.daemon.stages.Resolver.PreviewURL(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromPreview(preview))
}

func (s *apiServer) handleUpdateFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.daemon.store.GetFeed(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if feed == nil {
		s.writeError(w, http.StatusNotFound, "feed not found")
		return
	}

	var req api.UpdateFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		feed.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		feed.Description = strings.TrimSpace(*req.Description)
	}
	if req.Tags != nil {
		feed.Tags = req.Tags
	}
	if req.Active != nil {
		feed.Active = *req.Active
	}
	if err := s.daemon.store.UpdateFeed(r.Context(), feed); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FeedResponse{Feed: api.FromFeed(feed)})
}

func (s *apiServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := corpus.ListFilter{}
	if value := strings.TrimSpace(query.Get("stage")); value != "" {
		stage := corpus.Stage(value)
		filter.Stage = &stage
	}
	if value := strings.TrimSpace(query.Get("kind")); value != "" {
		filter.Kind = corpus.ItemKind(value)
	}
	if value, err := strconv.Atoi(query.Get("skip")); err == nil && value > 0 {
		filter.Offset = value
	}
	filter.Limit = 100
	if value, err := strconv.Atoi(query.Get("limit")); err == nil && value > 0 {
		filter.Limit = value
	}

	items, err := s.daemon.store.ListItems(r.Context(), filter)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemListResponse{Items: api.FromItems(items)})
}

func (s *apiServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.daemon.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemResponse{Item: api.FromItem(item)})
}

func (s *apiServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.daemon.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req api.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Abstract != nil {
		item.Abstract = *req.Abstract
	}
	if req.Content != nil {
		item.Content = *req.Content
	}
	if req.AIContent != nil {
		item.AIContent = *req.AIContent
	}
	if req.AIAbstract != nil {
		item.AIAbstract = *req.AIAbstract
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := s.daemon.store.UpdateItem(r.Context(), item); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemResponse{Item: api.FromItem(item)})
}

func (s *apiServer) handleRunStage(w http.ResponseWriter, r *http.Request) {
	stage := r.PathValue("stage")
	limit := 0
	if value, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && value > 0 {
		limit = value
	}
	processed, err := s.daemon.stages.Run(r.Context(), stage, limit)
	if err != nil {
		if strings.HasPrefix(err.Error(), "unknown stage") {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunResponse{Stage: stage, Processed: processed})
}

func (s *apiServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req api.AudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	audioURL, err := s.daemon.stages.Speech.Synthesize(r.Context(), req.Content, req.Voice, 0)
	if errors.Is(err, services.ErrValidation) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AudioResponse{AudioURL: audioURL})
}

func (s *apiServer) handleListVoices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.VoiceListResponse{Voices: api.FromVoices(speech.Voices())})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
