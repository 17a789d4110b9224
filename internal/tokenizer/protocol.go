package tokenizer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/desertthunder/lyrx/internal/models"
)

// WorkerRequest is written to the worker's stdin.
type WorkerRequest struct {
	Text string `json:"text"`
}

// WorkerResponse is read from the worker's stdout.
type WorkerResponse struct {
	Encoding models.Encoding `json:"encoding"`
	Error    string          `json:"error,omitempty"`
}

// ServeWorker handles a single request: it reads one [WorkerRequest] from r,
// encodes it with tok and writes one [WorkerResponse] to w.
//
// Encoding failures are reported in the response; the returned error is for
// I/O and protocol failures only.
func ServeWorker(r io.Reader, w io.Writer, tok Tokenizer) error {
	var req WorkerRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode worker request: %w", err)
	}

	var resp WorkerResponse
	enc, err := tok.Encode(req.Text)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Encoding = enc
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("encode worker response: %w", err)
	}
	return nil
}
