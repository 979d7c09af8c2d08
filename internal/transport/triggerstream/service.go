package triggerstream

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// TriggerStream_SubscribeServer is the server-side streaming handle
// passed to Server.Subscribe, grounded on the teacher's generated
// Visualiser_StreamFramesServer: grpc.ServerStream plus a typed Send.
// The request and every streamed message are *structpb.Struct rather
// than a generated message type, since this package hand-writes its
// grpc.ServiceDesc instead of running protoc (see package doc).
type TriggerStream_SubscribeServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type triggerStreamSubscribeServer struct {
	grpc.ServerStream
}

func (s *triggerStreamSubscribeServer) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(*Server).Subscribe(req, &triggerStreamSubscribeServer{stream})
}

var triggerStreamServiceDesc = grpc.ServiceDesc{
	ServiceName: "glass.TriggerStream",
	HandlerType: (*interface{})(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "triggerstream.proto",
}
