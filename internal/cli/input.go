// Package cli handles cmd line input for debugging the classifier in real time
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads lines, runs the colon commands and guesses every other line.
type InputHandler struct {
	classifier   bucket.IClassifier
	in           io.Reader
	out          *log.Logger
	scoreLimit   int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(classifier bucket.IClassifier, in io.Reader, out *log.Logger, scoreLimit int) *InputHandler {
	if scoreLimit < 1 {
		scoreLimit = 10
	}
	return &InputHandler{
		classifier: classifier,
		in:         in,
		out:        out,
		scoreLimit: scoreLimit,
	}
}

// Start begins the interface loop.
// It returns nil on :quit or when the input ends.
func (h *InputHandler) Start() error {
	h.out.Print("WordBucket CLI [BETA]")
	h.out.Print("type a sentence to guess its label, :learn <label> <text> to teach (:quit to exit)")
	reader := bufio.NewReader(h.in)

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line = strings.TrimSpace(line); line != "" {
			if quit := h.handleInput(line); quit {
				return nil
			}
		}
		if err != nil {
			return nil
		}
	}
}

// handleInput runs a single line and reports whether the loop should stop
func (h *InputHandler) handleInput(line string) bool {
	h.requestCount++
	if !strings.HasPrefix(line, ":") {
		h.guess(line)
		return false
	}

	cmd, rest := utils.SplitCommand(line)
	switch cmd {
	case ":quit", ":q":
		return true
	case ":learn":
		h.learn(rest)
	case ":scores":
		h.scores(rest)
	case ":dump":
		h.dump(rest)
	case ":stats":
		h.stats()
	case ":labels":
		h.labels()
	default:
		h.out.Errorf("Unknown command: %s", cmd)
	}
	return false
}

func (h *InputHandler) learn(args string) {
	label, text := utils.SplitCommand(args)
	if !utils.IsValidLabel(label) || text == "" {
		h.out.Error("usage: :learn <label> <text>")
		return
	}
	h.classifier.Learn(text, label)
	h.out.Printf("Learned %s", labelStyle.Render(bucket.Normalize(label)))
}

func (h *InputHandler) guess(text string) {
	start := time.Now()
	ranking := h.classifier.GuessScores(text)
	elapsed := time.Since(start)
	log.Debugf("Request %d took [ %v ] for '%s'", h.requestCount, elapsed, text)

	if len(ranking) == 0 {
		h.out.Warn("No label found, none of the words were learned")
		return
	}

	winners := bucket.Winners(ranking)
	h.out.Printf("Guess: %s", labelStyle.Render(strings.Join(winners, ", ")))
	h.printScores(ranking)
}

func (h *InputHandler) scores(word string) {
	if word == "" {
		h.out.Error("usage: :scores <word>")
		return
	}
	scores := h.classifier.Scores(bucket.Normalize(word))
	if len(scores) == 0 {
		h.out.Warnf("Word '%s' was never learned", word)
		return
	}
	h.printScores(scores)
}

func (h *InputHandler) printScores(scores []bucket.Score) {
	for i, s := range scores {
		if i == h.scoreLimit {
			h.out.Printf("... %d more", len(scores)-i)
			break
		}
		h.out.Printf("%2d. %-30s (count: %8s)", i+1, labelStyle.Render(s.Label), utils.FormatWithCommas(s.Count))
	}
}

func (h *InputHandler) dump(prefix string) {
	entries := h.classifier.DumpPrefix(bucket.Normalize(prefix))
	if len(entries) == 0 {
		h.out.Warn("Nothing to dump")
		return
	}
	for _, e := range entries {
		h.out.Print(fmt.Sprintf("%-30s %-20s %8s", e.Word, labelStyle.Render(e.Label), utils.FormatWithCommas(e.Count)))
	}
	h.out.Printf("%d entries", len(entries))
}

func (h *InputHandler) stats() {
	s := h.classifier.Stats()
	h.out.Print("Stats",
		"entries", utils.FormatWithCommas(s.Entries),
		"words", utils.FormatWithCommas(s.Words),
		"labels", s.Labels,
		"total", utils.FormatWithCommas(s.Total),
		"stopwords", s.Stopwords,
		"cached", s.CachedGuess)
}

func (h *InputHandler) labels() {
	labels := h.classifier.Labels()
	if len(labels) == 0 {
		h.out.Warn("No labels learned yet")
		return
	}
	h.out.Print(strings.Join(labels, " "))
}
