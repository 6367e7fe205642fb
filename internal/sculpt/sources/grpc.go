package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The landmark provider service is server-streaming: the client sends an
// empty request and receives one BytesValue per frame, each holding the
// same JSON object as a line of the JSONL stream.
const (
	landmarkService    = "handvox.landmarks.v1.LandmarkProvider"
	streamFramesMethod = "/" + landmarkService + "/StreamFrames"
)

// MaxMessageBytes bounds a single landmark message in either direction.
const MaxMessageBytes = maxLineBytes

type landmarkProvider interface {
	streamFrames(stream grpc.ServerStream) error
}

var landmarkServiceDesc = grpc.ServiceDesc{
	ServiceName: landmarkService,
	HandlerType: (*landmarkProvider)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "StreamFrames",
		Handler:       streamFramesHandler,
		ServerStreams: true,
	}},
	Metadata: "handvox/landmarks.proto",
}

func streamFramesHandler(srv any, stream grpc.ServerStream) error {
	if err := stream.RecvMsg(new(emptypb.Empty)); err != nil {
		return err
	}
	return srv.(landmarkProvider).streamFrames(stream)
}

// LandmarkServer streams landmark frames to gRPC clients. Every client
// gets its own source from open.
type LandmarkServer struct {
	open func(ctx context.Context) (Source, error)
}

// NewLandmarkServer creates a server that serves frames from the sources
// open returns.
func NewLandmarkServer(open func(ctx context.Context) (Source, error)) *LandmarkServer {
	return &LandmarkServer{open: open}
}

// Register adds the landmark service to gs.
func (s *LandmarkServer) Register(gs *grpc.Server) {
	gs.RegisterService(&landmarkServiceDesc, s)
}

func (s *LandmarkServer) streamFrames(stream grpc.ServerStream) error {
	ctx := stream.Context()
	src, err := s.open(ctx)
	if err != nil {
		return status.Errorf(codes.Unavailable, "open source: %v", err)
	}
	defer src.Close()

	opsf("landmark client connected")
	sent := 0
	for {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			opsf("landmark client done after %d frames", sent)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return status.FromContextError(ctx.Err()).Err()
			}
			return status.Errorf(codes.Internal, "read frame: %v", err)
		}
		line, err := EncodeFrame(f)
		if err != nil {
			return status.Errorf(codes.Internal, "encode frame %d: %v", f.Seq, err)
		}
		if err := stream.SendMsg(wrapperspb.Bytes(line)); err != nil {
			diagf("send frame %d: %v", f.Seq, err)
			return err
		}
		sent++
	}
}

// NewGRPCServer returns a gRPC server with message limits sized for
// landmark frames.
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageBytes),
		grpc.MaxSendMsgSize(MaxMessageBytes),
	}, opts...)
	return grpc.NewServer(opts...)
}

// GRPCSource reads frames from a landmark provider over gRPC. Messages
// are fed through a JSONLSource, so decoding, malformed input and the
// no-hand timeout behave exactly as for a JSONL stream.
type GRPCSource struct {
	*JSONLSource

	conn      *grpc.ClientConn
	cancel    context.CancelFunc
	pw        *io.PipeWriter
	closeOnce sync.Once
	closeErr  error
}

// DialGRPC connects to the landmark provider at target and starts the
// frame stream. Without options the connection is plaintext.
func DialGRPC(target string, cfg JSONLConfig, opts ...grpc.DialOption) (*GRPCSource, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(MaxMessageBytes)))
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial landmark provider: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := conn.NewStream(ctx, &landmarkServiceDesc.Streams[0], streamFramesMethod)
	if err == nil {
		err = stream.SendMsg(&emptypb.Empty{})
	}
	if err == nil {
		err = stream.CloseSend()
	}
	if err != nil {
		cancel()
		conn.Close()
		return nil, fmt.Errorf("open landmark stream %s: %w", target, err)
	}

	pr, pw := io.Pipe()
	s := &GRPCSource{
		JSONLSource: NewJSONLSource(pr, cfg),
		conn:        conn,
		cancel:      cancel,
		pw:          pw,
	}
	opsf("landmark stream open on %s", target)
	go s.recv(stream)
	return s, nil
}

func (s *GRPCSource) recv(stream grpc.ClientStream) {
	for {
		msg := new(wrapperspb.BytesValue)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				s.pw.Close()
			} else {
				s.pw.CloseWithError(fmt.Errorf("landmark stream: %w", err))
			}
			return
		}
		line := bytes.ReplaceAll(msg.GetValue(), []byte("\n"), []byte(" "))
		if _, err := s.pw.Write(append(line, '\n')); err != nil {
			return
		}
	}
}

// Close ends the stream and the connection.
func (s *GRPCSource) Close() error {
	s.closeOnce.Do(func() {
		err := s.JSONLSource.Close()
		s.cancel()
		s.closeErr = errors.Join(err, s.conn.Close())
	})
	return s.closeErr
}
