package httpapi

import "net/http"

// sseSink adapts an http.ResponseWriter into the engine.Sink (io.Writer)
// interface, flushing after every write so each frame reaches the client
// as soon as it is produced rather than sitting in a buffer.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

func newSSESink(w http.ResponseWriter) (*sseSink, bool) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &sseSink{w: w, f: f}, true
}

func (s *sseSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, err
	}
	s.f.Flush()
	return n, nil
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}
