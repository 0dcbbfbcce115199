package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/quegate/quegate/internal/core/models"
)

var queueSeq atomic.Int64

// uniqueQueue returns a queue name no other test uses. Backend state and the
// sqlite journal survive across tests in the same run, so every test works
// against its own queues.
func uniqueQueue(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, queueSeq.Add(1))
}

// TestClient drives the web API in-process. Every call goes through the real
// fiber app, middleware and routing included.
type TestClient struct {
	t *testing.T
}

// NewTestClient wraps the shared test app for one test.
func NewTestClient(t *testing.T) *TestClient {
	if testApp == nil {
		t.Fatal("test app is not initialized")
	}
	return &TestClient{t: t}
}

// Request performs one API call. A non-nil body is sent as JSON.
func (tc *TestClient) Request(method, path string, body any) *http.Response {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			tc.t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := testApp.Test(req, -1)
	if err != nil {
		tc.t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

// Decode reads the response body into out and closes it.
func (tc *TestClient) Decode(resp *http.Response, out any) {
	tc.t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		tc.t.Fatalf("Failed to decode response body: %v", err)
	}
}

// ExpectStatus fails the test unless the response carries the given status.
// The body is returned for further inspection and the response is closed.
func (tc *TestClient) ExpectStatus(resp *http.Response, want int) []byte {
	tc.t.Helper()
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != want {
		tc.t.Fatalf("Expected status %d, got %d: %s", want, resp.StatusCode, raw)
	}
	return raw
}

// CreateQueue creates a queue and fails the test on anything but 201.
func (tc *TestClient) CreateQueue(req models.CreateQueueRequest) models.QueueDTO {
	tc.t.Helper()
	resp := tc.Request(http.MethodPost, "/api/queues", req)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		tc.t.Fatalf("Failed to create queue %s: status %d: %s", req.Name, resp.StatusCode, raw)
	}
	var dto models.QueueDTO
	tc.Decode(resp, &dto)
	return dto
}

// DeleteQueue removes a queue, tolerating absence so tests can clean up
// unconditionally.
func (tc *TestClient) DeleteQueue(name string) {
	tc.t.Helper()
	resp := tc.Request(http.MethodDelete, "/api/queues/"+name, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		tc.t.Fatalf("Failed to delete queue %s: status %d", name, resp.StatusCode)
	}
}

// Send publishes one message and fails the test on anything but 201.
func (tc *TestClient) Send(queue string, req models.SendMessageRequest) models.MessageDTO {
	tc.t.Helper()
	resp := tc.Request(http.MethodPost, "/api/queues/"+queue+"/messages", req)
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		tc.t.Fatalf("Failed to send to %s: status %d: %s", queue, resp.StatusCode, raw)
	}
	var mr models.MessageResponse
	tc.Decode(resp, &mr)
	if mr.Message == nil {
		tc.t.Fatalf("Send to %s returned no message", queue)
	}
	return *mr.Message
}

// Receive pops the front message. The bool reports whether one was available.
func (tc *TestClient) Receive(queue string) (models.MessageDTO, bool) {
	tc.t.Helper()
	resp := tc.Request(http.MethodPost, "/api/queues/"+queue+"/receive", nil)
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return models.MessageDTO{}, false
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		tc.t.Fatalf("Failed to receive from %s: status %d: %s", queue, resp.StatusCode, raw)
	}
	var mr models.MessageResponse
	tc.Decode(resp, &mr)
	if mr.Message == nil {
		tc.t.Fatalf("Receive from %s returned 200 without a message", queue)
	}
	return *mr.Message, true
}

// Peek returns the front message without removing it.
func (tc *TestClient) Peek(queue string) (models.MessageDTO, bool) {
	tc.t.Helper()
	resp := tc.Request(http.MethodGet, "/api/queues/"+queue+"/peek", nil)
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		return models.MessageDTO{}, false
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		tc.t.Fatalf("Failed to peek %s: status %d", queue, resp.StatusCode)
	}
	var mr models.MessageResponse
	tc.Decode(resp, &mr)
	if mr.Message == nil {
		tc.t.Fatalf("Peek %s returned 200 without a message", queue)
	}
	return *mr.Message, true
}

// Count returns the backend message count for a queue.
func (tc *TestClient) Count(queue string) int64 {
	tc.t.Helper()
	resp := tc.Request(http.MethodGet, "/api/queues/"+queue+"/count", nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		tc.t.Fatalf("Failed to count %s: status %d", queue, resp.StatusCode)
	}
	var cr models.CountResponse
	tc.Decode(resp, &cr)
	return cr.Count
}

// Errors decodes the error envelope from a failed response.
func (tc *TestClient) Error(resp *http.Response) models.ErrorResponse {
	tc.t.Helper()
	var er models.ErrorResponse
	tc.Decode(resp, &er)
	return er
}
