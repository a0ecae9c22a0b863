/*
Package server implements msgpack IPC for the wordbucket classifier.

The server reads a stream of msgpack requests from stdin and writes one msgpack
response per request to stdout. Every request is a map with an action and the
fields that action needs:

	{"id": "req_001", "a": "learn", "t": "The child reads a classical novel", "b": "book"}
	{"id": "req_002", "a": "guess", "t": "Miss so and so visits the classical library"}

Guess responses carry the winning labels, the full ranking and the time taken in microseconds:

	{"id": "req_002", "l": ["book"], "s": [{"b": "book", "c": 1}], "c": 1, "t": 42}

Supported actions: learn, guess, scores, dump, stats, save and health.
The server announces itself with {"status": "ready"} before reading the first request.

Errors come back as {"id": ..., "e": message, "c": code}: 400 when the request
itself is wrong (unknown action, text over the length limit, a value that is not
a request map) and 500 when the server failed to carry it out.

Requests are processed one at a time in arrival order.
*/
package server

// Actions understood by the server
const (
	ActionLearn  = "learn"
	ActionGuess  = "guess"
	ActionScores = "scores"
	ActionDump   = "dump"
	ActionStats  = "stats"
	ActionSave   = "save"
	ActionHealth = "health"
)

// Request is the envelope of every message a client sends
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a"`
	Text   string `msgpack:"t,omitempty"`
	Label  string `msgpack:"b,omitempty"`
	Word   string `msgpack:"w,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
}

// ScoreItem is one label with its count
type ScoreItem struct {
	Label string `msgpack:"b"`
	Count int    `msgpack:"c"`
}

// EntryItem is one (word, label, count) triple of the table
type EntryItem struct {
	Word  string `msgpack:"w"`
	Label string `msgpack:"b"`
	Count int    `msgpack:"c"`
}

// GuessResponse - winning labels plus the ranking they came from
type GuessResponse struct {
	ID        string      `msgpack:"id"`
	Labels    []string    `msgpack:"l"`
	Scores    []ScoreItem `msgpack:"s"`
	Count     int         `msgpack:"c"`
	TimeTaken int64       `msgpack:"t"`
}

// ScoresResponse - labels a single word was learned with
type ScoresResponse struct {
	ID     string      `msgpack:"id"`
	Word   string      `msgpack:"w"`
	Scores []ScoreItem `msgpack:"s"`
	Count  int         `msgpack:"c"`
}

// DumpResponse - table entries, optionally limited to a word prefix
type DumpResponse struct {
	ID      string      `msgpack:"id"`
	Entries []EntryItem `msgpack:"e"`
	Count   int         `msgpack:"c"`
}

// StatsResponse - table and server counters
type StatsResponse struct {
	ID          string `msgpack:"id"`
	Entries     int    `msgpack:"entries"`
	Words       int    `msgpack:"words"`
	Labels      int    `msgpack:"labels"`
	Total       int    `msgpack:"total"`
	Stopwords   int    `msgpack:"stopwords"`
	CachedGuess int    `msgpack:"cached_guess"`
	Requests    int    `msgpack:"requests"`
}

// StatusResponse - plain acknowledgement
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
