package triggerstream

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// fakeSubscribeStream is a minimal grpc.ServerStream stand-in for exercising
// Server.Subscribe without a real network connection.
type fakeSubscribeStream struct {
	ctx  context.Context
	sent []*structpb.Struct
}

func (f *fakeSubscribeStream) Send(m *structpb.Struct) error {
	f.sent = append(f.sent, m)
	return nil
}
func (f *fakeSubscribeStream) Context() context.Context     { return f.ctx }
func (f *fakeSubscribeStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeSubscribeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeSubscribeStream) SetTrailer(metadata.MD)       {}
func (f *fakeSubscribeStream) SendMsg(m interface{}) error  { return nil }
func (f *fakeSubscribeStream) RecvMsg(m interface{}) error  { return nil }

func TestNewServerStartsEmpty(t *testing.T) {
	s := NewServer()
	if len(s.clients) != 0 {
		t.Fatalf("expected no clients, got %d", len(s.clients))
	}
}

func TestForwardFansOutToAllClients(t *testing.T) {
	s := NewServer()
	_, c1, done1 := s.register(4, "")
	defer done1()
	_, c2, done2 := s.register(4, "")
	defer done2()

	if err := s.Forward(context.Background(), trigger.Trigger{WebName: "global01", Count: 3}); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for _, c := range []*clientStream{c1, c2} {
		select {
		case got := <-c.ch:
			if got.WebName != "global01" {
				t.Errorf("WebName = %q, want global01", got.WebName)
			}
		default:
			t.Error("expected a fanned-out trigger on client channel")
		}
	}
}

func TestForwardFiltersByWebName(t *testing.T) {
	s := NewServer()
	_, c, done := s.register(4, "regional01")
	defer done()

	s.Forward(context.Background(), trigger.Trigger{WebName: "global01"})
	select {
	case <-c.ch:
		t.Fatal("expected no delivery for a non-matching web name")
	default:
	}

	s.Forward(context.Background(), trigger.Trigger{WebName: "regional01"})
	select {
	case <-c.ch:
	default:
		t.Fatal("expected delivery for a matching web name")
	}
}

func TestForwardEntersSkipModeWhenClientFallsBehind(t *testing.T) {
	s := NewServer()
	_, c, done := s.register(1, "")
	defer done()

	for i := 0; i < maxSlowSends+1; i++ {
		s.Forward(context.Background(), trigger.Trigger{Count: i})
	}

	if !c.cooldown.inSkipMode() {
		t.Error("expected client to enter skip mode after repeated full-buffer sends")
	}
}

func TestSubscribeStreamsTriggersUntilContextCancelled(t *testing.T) {
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	stream := &fakeSubscribeStream{ctx: ctx}

	done := make(chan error, 1)
	go func() {
		done <- s.Subscribe(new(structpb.Struct), stream)
	}()

	// Give Subscribe a moment to register before forwarding.
	time.Sleep(10 * time.Millisecond)
	if err := s.Forward(context.Background(), trigger.Trigger{WebName: "global01", Count: 7}); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Subscribe error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Subscribe did not return after context cancellation")
	}

	if len(stream.sent) != 1 {
		t.Fatalf("len(sent) = %d, want 1", len(stream.sent))
	}
	if stream.sent[0].Fields["webName"].GetStringValue() != "global01" {
		t.Errorf("unexpected sent struct: %+v", stream.sent[0])
	}
}

func TestSubscribeHonorsWebNameFilterFromRequest(t *testing.T) {
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := &fakeSubscribeStream{ctx: ctx}

	req, _ := structpb.NewStruct(map[string]interface{}{"webName": "regional01"})

	done := make(chan error, 1)
	go func() {
		done <- s.Subscribe(req, stream)
	}()
	time.Sleep(10 * time.Millisecond)

	s.Forward(context.Background(), trigger.Trigger{WebName: "global01"})
	s.Forward(context.Background(), trigger.Trigger{WebName: "regional01"})
	time.Sleep(10 * time.Millisecond)

	cancel()
	<-done

	if len(stream.sent) != 1 {
		t.Fatalf("len(sent) = %d, want 1", len(stream.sent))
	}
	if stream.sent[0].Fields["webName"].GetStringValue() != "regional01" {
		t.Errorf("unexpected sent struct: %+v", stream.sent[0])
	}
}

func TestTriggerToStructOmitsPicks(t *testing.T) {
	s, err := triggerToStruct(trigger.Trigger{WebName: "global01", Count: 2, BayesianSum: 5.5})
	if err != nil {
		t.Fatalf("triggerToStruct: %v", err)
	}
	if _, ok := s.Fields["picks"]; ok {
		t.Error("expected no picks field in the streamed struct")
	}
	if s.Fields["count"].GetNumberValue() != 2 {
		t.Errorf("count = %v, want 2", s.Fields["count"])
	}
}
