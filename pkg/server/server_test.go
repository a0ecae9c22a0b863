package server

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/wordbucket/pkg/bucket"
	"github.com/bastiangx/wordbucket/pkg/config"
	"github.com/bastiangx/wordbucket/pkg/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newClassifier(t *testing.T) *bucket.Classifier {
	t.Helper()
	c, err := bucket.New()
	require.NoError(t, err)
	return c
}

func encodeAll(t *testing.T, values ...any) *bytes.Buffer {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, v := range values {
		require.NoError(t, enc.Encode(v))
	}
	return &in
}

// responses decodes every msgpack value written by the server
func responses(t *testing.T, out *bytes.Buffer) []msgpack.RawMessage {
	t.Helper()
	dec := msgpack.NewDecoder(out)
	var raws []msgpack.RawMessage
	for {
		raw, err := dec.DecodeRaw()
		if errors.Is(err, io.EOF) {
			return raws
		}
		require.NoError(t, err)
		raws = append(raws, raw)
	}
}

func decode[T any](t *testing.T, raw msgpack.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, msgpack.Unmarshal(raw, &v))
	return v
}

func serve(t *testing.T, c *bucket.Classifier, cfg *config.Config, metrics *Metrics, requests ...any) []msgpack.RawMessage {
	t.Helper()
	var out bytes.Buffer
	srv := NewServer(c, cfg, encodeAll(t, requests...), &out, metrics)
	require.NoError(t, srv.Start())
	return responses(t, &out)
}

func TestServerReadyAndEOF(t *testing.T) {
	raws := serve(t, newClassifier(t), nil, nil)
	require.Len(t, raws, 1)
	assert.Equal(t, StatusResponse{Status: "ready"}, decode[StatusResponse](t, raws[0]))
}

func TestServerLearnAndGuess(t *testing.T) {
	raws := serve(t, newClassifier(t), nil, nil,
		Request{ID: "1", Action: ActionLearn, Text: "The child reads a classical novel", Label: "Book"},
		Request{ID: "2", Action: ActionLearn, Text: "He reads a generonormative magazine", Label: "magazine"},
		Request{ID: "3", Action: ActionLearn, Text: "In the filthy store they sell magazines", Label: "magazine"},
		Request{ID: "4", Action: ActionGuess, Text: "Miss so and so visits the classical library"},
		Request{ID: "5", Action: ActionGuess, Text: "reads"},
		Request{ID: "6", Action: ActionGuess, Text: "nothing learned here"},
	)
	require.Len(t, raws, 7)

	for i := 1; i <= 3; i++ {
		assert.Equal(t, "ok", decode[StatusResponse](t, raws[i]).Status)
	}

	guess := decode[GuessResponse](t, raws[4])
	assert.Equal(t, "4", guess.ID)
	assert.Equal(t, []string{"book"}, guess.Labels)
	assert.Equal(t, []ScoreItem{{Label: "book", Count: 1}}, guess.Scores)
	assert.Equal(t, 1, guess.Count)

	tie := decode[GuessResponse](t, raws[5])
	assert.Equal(t, []string{"book", "magazine"}, tie.Labels)

	none := decode[GuessResponse](t, raws[6])
	assert.Empty(t, none.Labels)
	assert.Equal(t, 0, none.Count)
}

func TestServerScoresDumpStats(t *testing.T) {
	c := newClassifier(t)
	c.Learn("The child reads a classical novel", "book")
	c.Learn("He reads a generonormative magazine", "magazine")

	raws := serve(t, c, nil, nil,
		Request{ID: "s", Action: ActionScores, Word: "reads"},
		Request{ID: "d", Action: ActionDump, Prefix: "gen"},
		Request{ID: "all", Action: ActionDump},
		Request{ID: "st", Action: ActionStats},
		Request{ID: "h", Action: ActionHealth},
	)
	require.Len(t, raws, 6)

	scores := decode[ScoresResponse](t, raws[1])
	assert.Equal(t, "reads", scores.Word)
	assert.Equal(t, []ScoreItem{{Label: "book", Count: 1}, {Label: "magazine", Count: 1}}, scores.Scores)

	dump := decode[DumpResponse](t, raws[2])
	assert.Equal(t, []EntryItem{{Word: "generonormative", Label: "magazine", Count: 1}}, dump.Entries)
	assert.Equal(t, 1, dump.Count)

	assert.Equal(t, len(c.Dump()), decode[DumpResponse](t, raws[3]).Count)

	stats := decode[StatsResponse](t, raws[4])
	assert.Equal(t, "st", stats.ID)
	assert.Equal(t, c.Stats().Entries, stats.Entries)
	assert.Equal(t, 2, stats.Labels)
	assert.Equal(t, 4, stats.Requests)

	assert.Equal(t, StatusResponse{ID: "h", Status: "ok"}, decode[StatusResponse](t, raws[5]))
}

func TestServerBadRequests(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxTextLen = 10

	raws := serve(t, newClassifier(t), cfg, nil,
		Request{ID: "u", Action: "explode"},
		Request{ID: "l", Action: ActionGuess, Text: strings.Repeat("é", 11)},
		Request{ID: "ok", Action: ActionGuess, Text: strings.Repeat("é", 10)},
		"not a request",
		Request{ID: "save", Action: ActionSave},
		Request{ID: "empty", Action: ActionLearn},
	)
	require.Len(t, raws, 7)

	unknown := decode[ErrorResponse](t, raws[1])
	assert.Equal(t, "u", unknown.ID)
	assert.Equal(t, 400, unknown.Code)

	assert.Equal(t, 400, decode[ErrorResponse](t, raws[2]).Code)
	assert.Equal(t, "ok", decode[GuessResponse](t, raws[3]).ID)
	assert.Equal(t, 400, decode[ErrorResponse](t, raws[4]).Code)

	noPath := decode[ErrorResponse](t, raws[5])
	assert.Equal(t, 400, noPath.Code)
	assert.Equal(t, ErrNoSnapshotPath.Error(), noPath.Error)

	assert.Equal(t, "ok", decode[StatusResponse](t, raws[6]).Status)
}

func TestServerBrokenStream(t *testing.T) {
	in := encodeAll(t, Request{ID: "h", Action: ActionHealth})
	in.Write([]byte{0xc1})

	var out bytes.Buffer
	err := NewServer(newClassifier(t), nil, in, &out, nil).Start()
	require.Error(t, err)

	raws := responses(t, &out)
	require.Len(t, raws, 3)
	assert.Equal(t, 400, decode[ErrorResponse](t, raws[2]).Code)
}

func TestServerSaveAndAutosave(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.SnapshotPath = filepath.Join(t.TempDir(), "table.msgpack")
	cfg.Server.AutosaveEvery = 2

	c := newClassifier(t)
	raws := serve(t, c, cfg, nil,
		Request{ID: "1", Action: ActionLearn, Text: "classical novel", Label: "book"},
		Request{ID: "2", Action: ActionLearn, Text: "glossy magazine", Label: "magazine"},
	)
	require.Len(t, raws, 3)

	restored := newClassifier(t)
	require.NoError(t, snapshot.Load(cfg.Server.SnapshotPath, restored))
	assert.Equal(t, c.Dump(), restored.Dump())

	raws = serve(t, c, cfg, nil,
		Request{ID: "3", Action: ActionLearn, Text: "thick novel", Label: "book"},
		Request{ID: "save", Action: ActionSave},
	)
	assert.Equal(t, StatusResponse{ID: "save", Status: "ok"}, decode[StatusResponse](t, raws[2]))

	require.NoError(t, snapshot.Load(cfg.Server.SnapshotPath, restored))
	assert.Equal(t, 2, restored.Scores("novel")[0].Count)
}

func TestServerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	serve(t, newClassifier(t), nil, metrics,
		Request{ID: "1", Action: ActionLearn, Text: "classical novel", Label: "book"},
		Request{ID: "2", Action: ActionGuess, Text: "novel"},
		Request{ID: "3", Action: ActionGuess, Text: "novel"},
		Request{ID: "4", Action: "explode"},
	)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(ActionLearn, "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(ActionGuess, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("unknown", "400")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.entries))

	// registering twice reuses the existing collectors
	_, err = NewMetrics(reg)
	assert.NoError(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Record(ActionGuess, 200, 0)
		m.SetEntries(3)
	})
}
