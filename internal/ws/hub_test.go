package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func receive(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case msg := <-client.out:
		return msg
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}
	return nil
}

func TestHubSubscribeAndPublish(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(nil, "lender-1")

	hub.Subscribe(LedgerTopic("lender-1"), client)
	hub.Publish(LedgerTopic("lender-1"), []byte(`{"event":"borrower_saved"}`))

	if msg := receive(t, client); string(msg) != `{"event":"borrower_saved"}` {
		t.Fatalf("unexpected payload: %s", string(msg))
	}

	hub.UnsubscribeAll(client)
	if n := hub.SubscriberCount(LedgerTopic("lender-1")); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestPublishLedgerEventIsLenderScoped(t *testing.T) {
	hub := NewHub(nil)
	mine := NewClient(nil, "lender-1")
	other := NewClient(nil, "lender-2")
	hub.Subscribe(LedgerTopic("lender-1"), mine)
	hub.Subscribe(LedgerTopic("lender-2"), other)

	hub.PublishLedgerEvent("lender-1", "transaction_added", map[string]string{"transaction_id": "t1"})

	var ev struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	if err := json.Unmarshal(receive(t, mine), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Event != "transaction_added" || ev.Data["transaction_id"] != "t1" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	select {
	case msg := <-other.out:
		t.Fatalf("other lender received %s", string(msg))
	default:
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	client := NewClient(nil, "lender-1")
	client.close()
	client.send([]byte("late"))
	client.close()
}

func TestSubscriptionTopicUsesAuthenticatedLender(t *testing.T) {
	got := subscriptionTopic(subscribeMessage{Action: "subscribe", Channel: " Ledger "}, "lender-9")
	if got != "lender:ledger:lender-9" {
		t.Fatalf("unexpected topic %q", got)
	}
	if subscriptionTopic(subscribeMessage{Channel: "pool:repayments"}, "lender-9") != "" {
		t.Fatalf("unknown channel must not resolve")
	}
}
