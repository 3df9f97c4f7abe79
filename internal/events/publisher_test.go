package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type fakeStream struct {
	redis.Cmdable
	added []*redis.XAddArgs
	err   error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func TestRedisPublisherAddsEnvelopeToStream(t *testing.T) {
	stream := &fakeStream{}
	p := NewRedisPublisher(stream)

	data := TransactionRecordedEvent{TransactionID: "TXN001", AccountNumber: "ACC001", Type: "DEPOSIT", Amount: 25, BalanceAfter: 125}
	if err := p.Publish(context.Background(), LedgerStream, TransactionRecorded, data); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(stream.added) != 1 || stream.added[0].Stream != LedgerStream {
		t.Fatalf("unexpected XAdd calls %+v", stream.added)
	}
	raw, ok := stream.added[0].Values.(map[string]any)["event"].([]byte)
	if !ok {
		t.Fatalf("event payload has type %T", stream.added[0].Values)
	}

	var got struct {
		Type string                   `json:"type"`
		Data TransactionRecordedEvent `json:"data"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != TransactionRecorded || got.Data != data {
		t.Fatalf("decoded %+v", got)
	}
}

func TestRedisPublisherWrapsErrors(t *testing.T) {
	cause := errors.New("connection refused")
	p := NewRedisPublisher(&fakeStream{err: cause})

	err := p.Publish(context.Background(), LedgerStream, AccountOpened, AccountOpenedEvent{AccountNumber: "ACC001"})
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), LedgerStream, AccountOpened, nil); err != nil {
		t.Fatal(err)
	}
}
