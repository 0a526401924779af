package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/storeerr"
)

// maxConcurrentRemoteCalls bounds in-flight requests to the inference
// endpoint, the same connection-pool-sizing concern a production HTTP
// client factory solves for outbound calls.
const maxConcurrentRemoteCalls = 4

// remoteRequestTimeout bounds a single call to the inference endpoint.
const remoteRequestTimeout = 15 * time.Second

// Remote calls a configurable local inference HTTP endpoint to derive
// metadata. It is never required: RuleBased is always available separately.
// The *_ai tools that use it return an error result when no endpoint is
// configured or a call fails; they do not fall back to RuleBased.
type Remote struct {
	Endpoint string
	Model    string
	client   *http.Client
	sem      *semaphore.Weighted
}

// NewRemote creates a Remote enhancer targeting endpoint with the given
// model id. Endpoint is expected to accept a JSON POST and return a JSON
// Suggestion-shaped body.
func NewRemote(endpoint, modelID string) *Remote {
	return &Remote{
		Endpoint: endpoint,
		Model:    modelID,
		client:   &http.Client{Timeout: remoteRequestTimeout},
		sem:      semaphore.NewWeighted(maxConcurrentRemoteCalls),
	}
}

type remoteRequest struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

type remoteResponse struct {
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Complexity int      `json:"complexity"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
}

func (r *Remote) Enhance(ctx context.Context, m *model.Memory) (Suggestion, error) {
	if r.Endpoint == "" {
		return Suggestion{}, storeerr.New(storeerr.InvalidInput, "no enhancement endpoint configured")
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Suggestion{}, storeerr.Wrap(storeerr.Timeout, err, "waiting for enhancement slot: %v", err)
	}
	defer r.sem.Release(1)

	body, err := json.Marshal(remoteRequest{Model: r.Model, Content: m.Content})
	if err != nil {
		return Suggestion{}, storeerr.Wrap(storeerr.Internal, err, "encoding enhancement request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, storeerr.Wrap(storeerr.Internal, err, "building enhancement request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Suggestion{}, storeerr.Wrap(storeerr.External, err, "calling enhancement endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Suggestion{}, storeerr.New(storeerr.External,
			"enhancement endpoint returned status %s", resp.Status)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Suggestion{}, storeerr.Wrap(storeerr.External, err, "decoding enhancement response: %v", err)
	}

	return Suggestion{
		Category:   out.Category,
		Tags:       out.Tags,
		Complexity: out.Complexity,
		Title:      out.Title,
		Summary:    out.Summary,
	}, nil
}

// Available reports whether the endpoint is configured for calling.
func (r *Remote) Available() bool { return r.Endpoint != "" }

// Status is a terse health summary for check_ai_status.
func (r *Remote) Status() string {
	if r.Endpoint == "" {
		return "disabled: no enhancement endpoint configured"
	}
	return fmt.Sprintf("configured: %s (model %s)", r.Endpoint, r.Model)
}
