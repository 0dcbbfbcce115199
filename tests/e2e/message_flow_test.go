package e2e

import (
	"net/http"
	"testing"

	"github.com/quegate/quegate/internal/core/models"
)

// TestMessageRoundtrip_SendPeekReceive pushes one message through the full
// path: send, peek without consuming, receive, and drain.
func TestMessageRoundtrip_SendPeekReceive(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("roundtrip")

	tc.CreateQueue(models.CreateQueueRequest{Name: name})
	defer tc.DeleteQueue(name)

	priority := 5
	sent := tc.Send(name, models.SendMessageRequest{
		Body:          "hello from e2e",
		Label:         "roundtrip",
		Priority:      &priority,
		CorrelationID: "corr-42",
	})
	if sent.ID == "" {
		t.Fatalf("Sent message has no ID")
	}
	if sent.Priority != 5 {
		t.Fatalf("Expected priority 5, got %d", sent.Priority)
	}
	if got := tc.Count(name); got != 1 {
		t.Fatalf("Expected count 1 after send, got %d", got)
	}

	// Peek must not consume
	peeked, ok := tc.Peek(name)
	if !ok {
		t.Fatalf("Expected a message to peek")
	}
	if peeked.Body != "hello from e2e" {
		t.Fatalf("Peeked body mismatch: %q", peeked.Body)
	}
	if got := tc.Count(name); got != 1 {
		t.Fatalf("Peek consumed the message, count=%d", got)
	}

	received, ok := tc.Receive(name)
	if !ok {
		t.Fatalf("Expected a message to receive")
	}
	if received.Body != "hello from e2e" {
		t.Fatalf("Received body mismatch: %q", received.Body)
	}
	if received.Label != "roundtrip" {
		t.Fatalf("Received label mismatch: %q", received.Label)
	}
	if received.CorrelationID != "corr-42" {
		t.Fatalf("Received correlation ID mismatch: %q", received.CorrelationID)
	}
	if got := tc.Count(name); got != 0 {
		t.Fatalf("Expected empty queue after receive, count=%d", got)
	}

	// Empty queue answers 204
	if _, ok := tc.Receive(name); ok {
		t.Fatalf("Expected no message on empty queue")
	}
}

// TestSend_CreatesQueueOnDemand verifies that sending to an unknown queue
// creates it instead of failing.
func TestSend_CreatesQueueOnDemand(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("on-demand")
	defer tc.DeleteQueue(name)

	msg := tc.Send(name, models.SendMessageRequest{Body: "auto-created"})
	if msg.Queue != `.\private$\`+name {
		t.Fatalf("Message landed on unexpected queue: %s", msg.Queue)
	}

	resp := tc.Request(http.MethodGet, "/api/queues/"+name+"/exists", nil)
	var exists models.ExistsResponse
	tc.Decode(resp, &exists)
	if !exists.Exists {
		t.Fatalf("Queue should exist after send-on-demand")
	}
}

// TestSend_DefaultPriorityApplied verifies that a send without an explicit
// priority gets the platform default.
func TestSend_DefaultPriorityApplied(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("default-priority")
	defer tc.DeleteQueue(name)

	msg := tc.Send(name, models.SendMessageRequest{Body: "no priority set"})
	if msg.Priority != 3 {
		t.Fatalf("Expected default priority 3, got %d", msg.Priority)
	}
}

// TestSend_EmptyBodyRejected verifies the empty-body guard answers 400.
func TestSend_EmptyBodyRejected(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("empty-body")

	resp := tc.Request(http.MethodPost, "/api/queues/"+name+"/messages",
		models.SendMessageRequest{Body: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty body, got %d", resp.StatusCode)
	}
	er := tc.Error(resp)
	if er.Code != "EMPTY_BODY" {
		t.Fatalf("Expected EMPTY_BODY, got %q", er.Code)
	}
}

// TestXMLPassthrough_WellFormedUnchanged verifies that clean XML crosses the
// gateway byte for byte.
func TestXMLPassthrough_WellFormedUnchanged(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("xml-clean")
	defer tc.DeleteQueue(name)

	body := `<order id="1"><total>9.99</total></order>`
	tc.Send(name, models.SendMessageRequest{Body: body})

	received, ok := tc.Receive(name)
	if !ok {
		t.Fatalf("Expected a message to receive")
	}
	if received.Body != body {
		t.Fatalf("Clean XML was altered:\nsent:     %q\nreceived: %q", body, received.Body)
	}
}

// TestXMLNegotiation_ByteOrderMarkStripped verifies that a BOM-prefixed XML
// body is repaired before it is enqueued.
func TestXMLNegotiation_ByteOrderMarkStripped(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("xml-bom")
	defer tc.DeleteQueue(name)

	tc.Send(name, models.SendMessageRequest{Body: "\uFEFF<order/>"})

	received, ok := tc.Receive(name)
	if !ok {
		t.Fatalf("Expected a message to receive")
	}
	if received.Body != "<order/>" {
		t.Fatalf("Expected BOM stripped, got %q", received.Body)
	}
}

// TestQueueCapacity_FullQueueRejects fills a queue to its depth limit and
// verifies the overflow send answers 409, then purges and sends again.
func TestQueueCapacity_FullQueueRejects(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("capacity")

	tc.CreateQueue(models.CreateQueueRequest{Name: name})
	defer tc.DeleteQueue(name)

	for i := 0; i < testQueueDepth; i++ {
		tc.Send(name, models.SendMessageRequest{Body: "filler"})
	}

	resp := tc.Request(http.MethodPost, "/api/queues/"+name+"/messages",
		models.SendMessageRequest{Body: "one too many"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409 on full queue, got %d", resp.StatusCode)
	}
	er := tc.Error(resp)
	if er.Code != "QUEUE_FULL" {
		t.Fatalf("Expected QUEUE_FULL, got %q", er.Code)
	}

	// Purge drains the queue and sends work again
	resp = tc.Request(http.MethodDelete, "/api/queues/"+name+"/messages", nil)
	tc.ExpectStatus(resp, http.StatusOK)
	if got := tc.Count(name); got != 0 {
		t.Fatalf("Expected empty queue after purge, count=%d", got)
	}
	tc.Send(name, models.SendMessageRequest{Body: "room again"})
}

// TestJournal_RecordsMessageTrail verifies that sends and receives leave a
// queryable trail with sizes but no bodies.
func TestJournal_RecordsMessageTrail(t *testing.T) {
	tc := NewTestClient(t)
	name := uniqueQueue("journal")

	tc.CreateQueue(models.CreateQueueRequest{Name: name})
	defer tc.DeleteQueue(name)

	tc.Send(name, models.SendMessageRequest{Body: "first", Label: "trail", CorrelationID: "j-1"})
	tc.Send(name, models.SendMessageRequest{Body: "second"})
	if _, ok := tc.Receive(name); !ok {
		t.Fatalf("Expected a message to receive")
	}

	resp := tc.Request(http.MethodGet, "/api/journal?queue="+name, nil)
	var journal models.JournalListResponse
	tc.Decode(resp, &journal)

	if len(journal.Entries) != 3 {
		t.Fatalf("Expected 3 journal entries, got %d", len(journal.Entries))
	}
	// Newest first: the receive is on top
	if journal.Entries[0].Direction != "RECEIVED" {
		t.Fatalf("Expected newest entry to be RECEIVED, got %s", journal.Entries[0].Direction)
	}
	for _, e := range journal.Entries {
		if e.BodySize <= 0 {
			t.Fatalf("Journal entry %s has no body size", e.ID)
		}
		if e.MessageID == "" {
			t.Fatalf("Journal entry %s has no message ID", e.ID)
		}
	}

	// Direction filter
	resp = tc.Request(http.MethodGet, "/api/journal?queue="+name+"&direction=SENT", nil)
	tc.Decode(resp, &journal)
	if len(journal.Entries) != 2 {
		t.Fatalf("Expected 2 SENT entries, got %d", len(journal.Entries))
	}
	for _, e := range journal.Entries {
		if e.Direction != "SENT" {
			t.Fatalf("Direction filter leaked a %s entry", e.Direction)
		}
	}
}
