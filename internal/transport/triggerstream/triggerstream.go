// Package triggerstream exposes recent triggers to external subscribers
// over a gRPC server-streaming RPC, grounded on
// internal/lidar/visualiser/grpc_server.go's subscriber-map/streaming-loop
// shape: a mutex-guarded client registry, one buffered channel per client,
// a select-based drain loop, and hysteresis-based backpressure so a slow
// client degrades to a lossy feed instead of stalling the broadcaster.
//
// The retrieval pack's generated pb package (the teacher's protoc output)
// was filtered out of the example set, so this package hand-writes a
// grpc.ServiceDesc around google.protobuf.Struct payloads rather than
// fabricate .proto/protoc-gen-go sources the toolchain was never run to
// produce (see DESIGN.md).
package triggerstream

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// maxSlowSends is the number of consecutive slow (buffer-full) sends a
// client tolerates before it is switched into skip mode; minFastSends is
// the number of consecutive fast sends required to switch back.
const (
	maxSlowSends = 3
	minFastSends = 5
)

// sendCooldown tracks a client's recent send history with hysteresis,
// mirroring visualiser.Server: maxSlowSends consecutive full-buffer drops
// put the client in skip mode and minFastSends consecutive deliveries take
// it out again. Skip mode does not throttle delivery; it only stops the
// slow-send bookkeeping and log line.
type sendCooldown struct {
	slowRun  int
	fastRun  int
	skipping bool
}

func (c *sendCooldown) recordSlow() {
	c.slowRun++
	c.fastRun = 0
	if c.slowRun >= maxSlowSends {
		c.skipping = true
	}
}

func (c *sendCooldown) recordFast() {
	c.fastRun++
	c.slowRun = 0
	if c.fastRun >= minFastSends {
		c.skipping = false
	}
}

func (c *sendCooldown) inSkipMode() bool {
	return c.skipping
}

// clientStream is one subscriber's delivery channel and backpressure state.
// An empty webName subscribes to every web.
type clientStream struct {
	ch       chan trigger.Trigger
	cooldown sendCooldown
	webName  string
}

// Server implements both the hand-rolled TriggerStream gRPC service and
// trigger.Forwarder, so a ChannelSink can drain straight into it: every
// forwarded Trigger is fanned out to every currently-registered client.
type Server struct {
	mu      sync.Mutex
	clients map[string]*clientStream
}

// NewServer returns an empty Server ready to register clients and accept
// forwarded triggers.
func NewServer() *Server {
	return &Server{clients: make(map[string]*clientStream)}
}

var _ trigger.Forwarder = (*Server)(nil)

// Forward implements trigger.Forwarder: it fans t out to every registered
// client's buffered channel, dropping it for any client whose buffer is
// full rather than blocking the ChannelSink's drain loop. Clients in skip
// mode still receive every trigger that fits in their buffer.
func (s *Server) Forward(ctx context.Context, t trigger.Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		if c.webName != "" && c.webName != t.WebName {
			continue
		}
		if c.cooldown.inSkipMode() {
			select {
			case c.ch <- t:
				c.cooldown.recordFast()
			default:
			}
			continue
		}
		select {
		case c.ch <- t:
			c.cooldown.recordFast()
		default:
			c.cooldown.recordSlow()
			log.Printf("triggerstream: client %q is falling behind, entering skip mode=%v", id, c.cooldown.inSkipMode())
		}
	}
	return nil
}

// register adds a new client with the given buffer depth and web-name
// filter, and returns its id plus a function that removes it again.
func (s *Server) register(bufSize int, webName string) (string, *clientStream, func()) {
	id := uuid.NewString()
	c := &clientStream{ch: make(chan trigger.Trigger, bufSize), webName: webName}

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	return id, c, func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		close(c.ch)
	}
}

// Subscribe is the streaming RPC handler: it registers a client filtered
// by req's optional "webName" field, then relays every fanned-out Trigger
// to stream as a *structpb.Struct until the client disconnects or the
// server shuts the stream down.
func (s *Server) Subscribe(req *structpb.Struct, stream TriggerStream_SubscribeServer) error {
	webName := ""
	if req != nil {
		if v, ok := req.Fields["webName"]; ok {
			webName = v.GetStringValue()
		}
	}

	id, c, unregister := s.register(64, webName)
	defer unregister()

	ctx := stream.Context()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-c.ch:
			if !ok {
				return nil
			}
			msg, err := triggerToStruct(t)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
			sent++
		case <-ticker.C:
			log.Printf("triggerstream: client %q sent=%d skipping=%v", id, sent, c.cooldown.inSkipMode())
		}
	}
}

// triggerToStruct converts a Trigger to a protobuf Struct, omitting the
// Picks slice: subscribers diagnose trigger rate and geometry, not the
// underlying pick list.
func triggerToStruct(t trigger.Trigger) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"webName":      t.WebName,
		"originTime":   t.OriginTime,
		"lat":          t.Lat,
		"lon":          t.Lon,
		"depth":        t.Depth,
		"resolutionKM": t.ResolutionKM,
		"bayesianSum":  t.BayesianSum,
		"count":        t.Count,
	})
}

// RegisterService attaches the hand-rolled TriggerStream service
// definition to grpcServer, mirroring the teacher's
// pb.RegisterVisualiserServer registration helper.
func RegisterService(grpcServer *grpc.Server, srv *Server) {
	grpcServer.RegisterService(&triggerStreamServiceDesc, srv)
}
