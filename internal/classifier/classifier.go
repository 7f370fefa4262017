package classifier

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dantte-lp/ptrid/internal/engine"
	"github.com/dantte-lp/ptrid/internal/netio"
)

// minScorablePayload is the floor below which a payload is too short to
// score (§4.6: "If payload length < 20 bytes, skip scoring").
const minScorablePayload = 20

// HttpSession is a TCP conversation initiated by a GET request. It
// accumulates response-payload byte-pair frequencies until the
// conversation is retired by FIN or RST. It holds only its own accumulated
// counts and the captured request line — no back-reference to the
// analyzer or the reference library (§9: "sessions hold only accumulated
// frequency counts plus the captured request line").
//
// Each payload's frequencies are computed by an independent, short-lived
// reader and summed into frequencies; the session itself never streams
// bytes through a single persistent reader, so no pair is counted across a
// segment boundary — matching §3's invariant that accumulated_frequencies
// "sums all response-payload frequency contributions observed on that
// session so far" as a sum of per-payload vectors, not a continuous stream.
type HttpSession struct {
	RequestLine string
	frequencies engine.FrequencyVector
}

// Frequencies returns a snapshot of the session's accumulated depth-2
// frequency vector.
func (s *HttpSession) Frequencies() engine.FrequencyVector {
	return s.frequencies.Clone()
}

// Verdict is one classification event the analyzer emits: either the
// placeholder issued when a session is created, or a scored result.
type Verdict struct {
	Key         netio.TcpSessionKey
	RequestLine string
	TypeName    string
	// Placeholder is true for the "plain_text" verdict printed the moment
	// a GET request creates a new session, before any response data has
	// been seen.
	Placeholder bool
}

// String renders the verdict the way the online tool prints it: the
// request line followed by the placeholder on session creation, or a
// scored "Data type is <name>" line otherwise.
//
// The request line is printed only once, at session creation — it is not
// re-printed alongside every later "Data type is …" verdict on that
// session, even though the original tool does reprint it. §4.6's "Entry
// exists" bullet lists only "Emit Data type is <name>" for that case, so
// this follows the stated contract rather than the original's repetition.
func (v Verdict) String() string {
	if v.Placeholder {
		return fmt.Sprintf("%s%s", v.RequestLine, "Data type is plain_text")
	}
	return fmt.Sprintf("Data type is %s", v.TypeName)
}

// Analyzer owns the HTTP session map exclusively (§5: "no external reader
// exists") and the reference library it scores against. Every method holds
// an internal mutex, so calls are serialized; the capture loop itself is
// single-threaded per §5 and calls it from one goroutine.
type Analyzer struct {
	mu       sync.Mutex
	sessions map[netio.TcpSessionKey]*HttpSession
	library  *engine.ReferenceLibrary
	cache    *engine.FrequencyCache
}

// NewAnalyzer constructs an Analyzer scoring against library. cache is
// stored but not consulted: payloads are in-memory buffers with no path to
// key a cache entry on, so each payload is read by a Reader built without
// a cache. cache may be nil.
func NewAnalyzer(library *engine.ReferenceLibrary, cache *engine.FrequencyCache) *Analyzer {
	return &Analyzer{
		sessions: make(map[netio.TcpSessionKey]*HttpSession),
		library:  library,
		cache:    cache,
	}
}

// ActiveSessions reports the number of live HTTP sessions, for metrics.
func (a *Analyzer) ActiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// SessionFrequencies returns a snapshot of the accumulated frequency vector
// for the session at key, if one is live. It exists for introspection (and
// tests) of the accumulation invariant in §3 — it is not used by the
// capture loop itself.
func (a *Analyzer) SessionFrequencies(key netio.TcpSessionKey) (engine.FrequencyVector, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	session, ok := a.sessions[key]
	if !ok {
		return nil, false
	}
	return session.Frequencies(), true
}

// Process runs one captured frame through the per-session state machine of
// §4.6 and returns the verdicts it produced, in order (zero, one for a
// newly created session's placeholder, or one scored verdict), plus whether
// this packet was skipped for scoring because its payload fell below
// minScorablePayload on a known session.
func (a *Analyzer) Process(frame *netio.Frame) (verdicts []Verdict, skipped bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := netio.NewTcpSessionKey(frame.SrcIP, frame.DstIP, frame.SrcPort, frame.DstPort)
	session, exists := a.sessions[key]

	if !exists {
		if !bytes.HasPrefix(frame.Payload, []byte("GET")) {
			// MissingSession: a response or mid-stream packet on an
			// unknown key with no preceding GET. Silently skipped (§7).
			return nil, false, nil
		}

		requestLine := firstLine(frame.Payload)
		freq, err := engine.NewFrequencyVector(2)
		if err != nil {
			return nil, false, err
		}
		a.sessions[key] = &HttpSession{RequestLine: requestLine, frequencies: freq}
		return []Verdict{{Key: key, RequestLine: requestLine, Placeholder: true}}, false, nil
	}

	if len(frame.Payload) < minScorablePayload {
		if frame.FIN || frame.RST {
			delete(a.sessions, key)
		}
		return nil, true, nil
	}

	name, err := a.classify(session, frame.Payload)
	if err != nil {
		return nil, false, err
	}
	verdicts = append(verdicts, Verdict{Key: key, TypeName: name})

	if frame.FIN || frame.RST {
		delete(a.sessions, key)
	}
	return verdicts, false, nil
}

// classify computes the frequency vector to score. A response-start segment
// is scored as its own fresh, standalone vector without touching the
// session's accumulation; every other segment's vector is computed by an
// independent reader and summed into the session's accumulated frequencies
// before that accumulation is scored. Each payload is always read by a
// fresh reader — the session never streams bytes through one persistent
// reader — so no pair is ever counted across a segment boundary.
func (a *Analyzer) classify(session *HttpSession, payload []byte) (string, error) {
	isResponseStart := bytes.HasPrefix(payload, []byte("HTTP"))

	fresh, err := engine.NewReader(2, nil)
	if err != nil {
		return "", err
	}
	fresh.ReadBuffer(payload)
	payloadFreq := fresh.Snapshot()

	var freq engine.FrequencyVector
	if isResponseStart {
		freq = payloadFreq
	} else {
		session.frequencies.Add(payloadFreq)
		freq = session.frequencies
	}

	if a.library.Metric == engine.MetricMarkovLogLikelihood {
		_, name, err := a.library.Classify(freq, nil)
		return name, err
	}

	scheme, err := engine.NewScheme(2, freq)
	if err != nil {
		return "", err
	}
	_, name, err := a.library.Classify(nil, scheme)
	return name, err
}

// firstLine returns the bytes up to and including the first '\n', or the
// whole payload if it has none. This is the corrected HTTP request-line
// extraction rule stated directly in §4.6, overriding the off-by-one
// variants named in §9(iii).
func firstLine(payload []byte) string {
	if idx := bytes.IndexByte(payload, '\n'); idx >= 0 {
		return string(payload[:idx+1])
	}
	return string(payload)
}
