package predictor

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/fieldplot/internal/field"
)

// The wire contract: one unary method taking and returning a list of rows,
// each row a list of numbers. Requests carry (x, t) rows; responses carry
// at least one column per row.
const (
	serviceName   = "fieldplot.Predictor"
	predictMethod = "/" + serviceName + "/Predict"
)

// Remote calls a model served over gRPC.
type Remote struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// Dial connects to a predictor service at target. Without options the
// connection is plaintext. A zero timeout leaves calls unbounded.
func Dial(target string, timeout time.Duration, opts ...grpc.DialOption) (*Remote, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial predictor %s: %w", target, err)
	}
	return &Remote{conn: conn, timeout: timeout}, nil
}

// Predict implements field.Predictor with a single unary call.
func (r *Remote) Predict(points mat.Matrix) (mat.Matrix, error) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp := new(structpb.ListValue)
	if err := r.conn.Invoke(ctx, predictMethod, encodeRows(points), resp); err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}
	out, err := decodeRows(resp)
	if err != nil {
		return nil, fmt.Errorf("remote predict response: %w", err)
	}
	return out, nil
}

// Close releases the connection.
func (r *Remote) Close() error {
	return r.conn.Close()
}

// Register serves p on s under the predictor wire contract.
func Register(s *grpc.Server, p field.Predictor) {
	s.RegisterService(&serviceDesc, &server{predictor: p})
}

type predictServer interface {
	predict(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error)
}

type server struct {
	predictor field.Predictor
}

func (s *server) predict(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error) {
	in, err := decodeRows(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad request: %v", err)
	}
	if _, c := in.Dims(); c != 2 {
		return nil, status.Errorf(codes.InvalidArgument, "rows must have 2 columns (x, t), got %d", c)
	}
	out, err := s.predictor.Predict(in)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "predict: %v", err)
	}
	return encodeRows(out), nil
}

func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(predictServer).predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: predictMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(predictServer).predict(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*predictServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fieldplot/predictor",
}

func encodeRows(m mat.Matrix) *structpb.ListValue {
	r, c := m.Dims()
	rows := make([]*structpb.Value, r)
	for i := 0; i < r; i++ {
		cols := make([]*structpb.Value, c)
		for j := 0; j < c; j++ {
			cols[j] = structpb.NewNumberValue(m.At(i, j))
		}
		rows[i] = structpb.NewListValue(&structpb.ListValue{Values: cols})
	}
	return &structpb.ListValue{Values: rows}
}

func decodeRows(l *structpb.ListValue) (*mat.Dense, error) {
	rows := l.GetValues()
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	width := len(rows[0].GetListValue().GetValues())
	if width == 0 {
		return nil, fmt.Errorf("row 0 is empty or not a list")
	}
	out := mat.NewDense(len(rows), width, nil)
	for i, row := range rows {
		cols := row.GetListValue().GetValues()
		if len(cols) != width {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(cols), width)
		}
		for j, v := range cols {
			if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
				return nil, fmt.Errorf("row %d column %d is not a number", i, j)
			}
			out.Set(i, j, v.GetNumberValue())
		}
	}
	return out, nil
}
