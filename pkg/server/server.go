package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/bastiangx/wordbucket/pkg/config"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNoSnapshotPath is returned by save requests when no snapshot file is configured
var ErrNoSnapshotPath = errors.New("no snapshot path configured")

// Server handles the IPC for a classifier
type Server struct {
	classifier   *bucket.Classifier
	config       *config.Config
	metrics      *Metrics
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	requestCount int
	learnCount   int
}

// NewServer creates a server reading requests from in and writing responses to out.
// metrics may be nil.
func NewServer(classifier *bucket.Classifier, cfg *config.Config, in io.Reader, out io.Writer, metrics *Metrics) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	writer := bufio.NewWriter(out)
	return &Server{
		classifier: classifier,
		config:     cfg,
		metrics:    metrics,
		decoder:    msgpack.NewDecoder(bufio.NewReader(in)),
		writer:     writer,
		encoder:    msgpack.NewEncoder(writer),
	}
}

// Start announces readiness and serves requests until the input ends.
// A clean end of input returns nil.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.metrics.SetEntries(s.classifier.Len())

	if err := s.sendResponse(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			// the stream cannot be resynchronized after a broken value
			log.Errorf("Reading request: %v", err)
			s.sendError("", "Invalid msgpack stream", 400)
			return fmt.Errorf("failed to read request: %w", err)
		}
		if err := s.handleRequest(raw); err != nil {
			return err
		}
	}
}

// handleRequest decodes and answers a single request
func (s *Server) handleRequest(raw msgpack.RawMessage) error {
	start := time.Now()
	s.requestCount++

	var request Request
	if err := msgpack.Unmarshal(raw, &request); err != nil {
		log.Debugf("Unmarshaling request: %v", err)
		s.metrics.Record("invalid", 400, time.Since(start))
		return s.sendError("", "Invalid request", 400)
	}

	response, code := s.dispatch(request)
	action := request.Action
	if code == 400 && !knownAction(action) {
		action = "unknown"
	}
	s.metrics.Record(action, code, time.Since(start))
	return s.sendResponse(response)
}

func knownAction(action string) bool {
	switch action {
	case ActionLearn, ActionGuess, ActionScores, ActionDump, ActionStats, ActionSave, ActionHealth:
		return true
	}
	return false
}

// dispatch runs the action of a request and returns the response with its status code
func (s *Server) dispatch(request Request) (any, int) {
	switch request.Action {
	case ActionLearn:
		return s.handleLearn(request)
	case ActionGuess:
		return s.handleGuess(request)
	case ActionScores:
		return s.handleScores(request)
	case ActionDump:
		return s.handleDump(request)
	case ActionStats:
		return s.handleStats(request)
	case ActionSave:
		return s.handleSave(request)
	case ActionHealth:
		return StatusResponse{ID: request.ID, Status: "ok"}, 200
	default:
		return errorResponse(request.ID, fmt.Sprintf("Unknown action: %q", request.Action), 400)
	}
}

func errorResponse(id, message string, code int) (any, int) {
	return ErrorResponse{ID: id, Error: message, Code: code}, code
}

// checkText enforces server.max_text_len, counted in characters
func (s *Server) checkText(request Request) (any, int, bool) {
	limit := s.config.Server.MaxTextLen
	if n := utf8.RuneCountInString(request.Text); n > limit {
		log.Debug("Text too long", "id", request.ID, "len", n, "limit", limit)
		resp, code := errorResponse(request.ID, fmt.Sprintf("Text exceeds maximum length of %d characters", limit), 400)
		return resp, code, false
	}
	return nil, 0, true
}

func (s *Server) handleLearn(request Request) (any, int) {
	if resp, code, ok := s.checkText(request); !ok {
		return resp, code
	}
	s.classifier.Learn(request.Text, request.Label)
	s.learnCount++
	s.metrics.SetEntries(s.classifier.Len())

	if every := s.config.Server.AutosaveEvery; every > 0 && s.learnCount%every == 0 {
		if err := s.save(); err != nil {
			log.Errorf("Autosave failed: %v", err)
		}
	}
	return StatusResponse{ID: request.ID, Status: "ok"}, 200
}

func (s *Server) handleGuess(request Request) (any, int) {
	if resp, code, ok := s.checkText(request); !ok {
		return resp, code
	}
	start := time.Now()
	ranking := s.classifier.GuessScores(request.Text)
	labels := bucket.Winners(ranking)
	elapsed := time.Since(start)

	log.Debug("Guessed", "id", request.ID, "labels", labels, "took", elapsed)
	return GuessResponse{
		ID:        request.ID,
		Labels:    labels,
		Scores:    toScoreItems(ranking),
		Count:     len(ranking),
		TimeTaken: elapsed.Microseconds(),
	}, 200
}

func (s *Server) handleScores(request Request) (any, int) {
	scores := s.classifier.Scores(request.Word)
	return ScoresResponse{
		ID:     request.ID,
		Word:   request.Word,
		Scores: toScoreItems(scores),
		Count:  len(scores),
	}, 200
}

func (s *Server) handleDump(request Request) (any, int) {
	entries := s.classifier.DumpPrefix(request.Prefix)
	items := make([]EntryItem, len(entries))
	for i, e := range entries {
		items[i] = EntryItem{Word: e.Word, Label: e.Label, Count: e.Count}
	}
	return DumpResponse{ID: request.ID, Entries: items, Count: len(items)}, 200
}

func (s *Server) handleStats(request Request) (any, int) {
	stats := s.classifier.Stats()
	return StatsResponse{
		ID:          request.ID,
		Entries:     stats.Entries,
		Words:       stats.Words,
		Labels:      stats.Labels,
		Total:       stats.Total,
		Stopwords:   stats.Stopwords,
		CachedGuess: stats.CachedGuess,
		Requests:    s.requestCount,
	}, 200
}

func (s *Server) handleSave(request Request) (any, int) {
	if err := s.save(); err != nil {
		if errors.Is(err, ErrNoSnapshotPath) {
			return errorResponse(request.ID, err.Error(), 400)
		}
		log.Errorf("Saving snapshot: %v", err)
		return errorResponse(request.ID, "Failed to save snapshot", 500)
	}
	return StatusResponse{ID: request.ID, Status: "ok"}, 200
}

func (s *Server) save() error {
	path := s.config.Server.SnapshotPath
	if path == "" {
		return ErrNoSnapshotPath
	}
	return snapshot.Save(path, s.classifier)
}

func toScoreItems(scores []bucket.Score) []ScoreItem {
	items := make([]ScoreItem, len(scores))
	for i, sc := range scores {
		items[i] = ScoreItem{Label: sc.Label, Count: sc.Count}
	}
	return items
}

// sendResponse encodes a response and flushes it to the client
func (s *Server) sendResponse(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Marshaling response: %v", err)
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) error {
	return s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
