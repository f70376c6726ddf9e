package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/portfolio"
)

// Server implements the PortfolioService gRPC server
type Server struct {
	PortfolioService *portfolio.PortfolioService
}

// NewServer creates a new gRPC server instance
func NewServer(portfolioService *portfolio.PortfolioService) *Server {
	return &Server{PortfolioService: portfolioService}
}

type bucketRequest struct {
	Name string `mapstructure:"name"`
}

type symbolRequest struct {
	Symbol string `mapstructure:"symbol"`
}

// orderRequest keeps quantity as float64, the only number type a Struct carries,
// so fractional values can be rejected instead of truncated
type orderRequest struct {
	Type     string    `mapstructure:"type"`
	Symbol   string    `mapstructure:"symbol"`
	Date     time.Time `mapstructure:"date"`
	Quantity float64   `mapstructure:"quantity"`
	Buckets  []string  `mapstructure:"buckets"`
}

type bucketsUpdateRequest struct {
	Symbol  string   `mapstructure:"symbol"`
	Buckets []string `mapstructure:"buckets"`
}

// CreateBucket handles the CreateBucket RPC
func (s *Server) CreateBucket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	if err := s.PortfolioService.CreateBucket(ctx, in.Name); err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// DeleteBucket handles the DeleteBucket RPC
func (s *Server) DeleteBucket(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	if err := s.PortfolioService.DeleteBucket(ctx, in.Name); err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// ListBuckets handles the ListBuckets RPC
func (s *Server) ListBuckets(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(map[string]any{"buckets": s.PortfolioService.ListBuckets(ctx)})
}

// AddOrder handles the AddOrder RPC
func (s *Server) AddOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in orderRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	direction, err := domain.ParseDirection(in.Type)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if in.Symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}
	if in.Date.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "date is required")
	}
	quantity, err := wholeShares(in.Quantity)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	err = s.PortfolioService.AddOrder(ctx, portfolio.OrderRequest{
		Direction: direction,
		Symbol:    in.Symbol,
		TradeDate: in.Date,
		Quantity:  quantity,
		Buckets:   in.Buckets,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// AddToBuckets handles the AddToBuckets RPC
func (s *Server) AddToBuckets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketsUpdateRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	err := s.PortfolioService.AddToBuckets(ctx, portfolio.BucketsUpdateRequest{Symbol: in.Symbol, Buckets: in.Buckets})
	if err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// RemoveFromBuckets handles the RemoveFromBuckets RPC
func (s *Server) RemoveFromBuckets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketsUpdateRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	err := s.PortfolioService.RemoveFromBuckets(ctx, portfolio.BucketsUpdateRequest{Symbol: in.Symbol, Buckets: in.Buckets})
	if err != nil {
		return nil, mapError(err)
	}
	return &structpb.Struct{}, nil
}

// GetPosition handles the GetPosition RPC
func (s *Server) GetPosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in symbolRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	pos, err := s.PortfolioService.GetPosition(ctx, in.Symbol)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(pos)
}

// GetBucketPosition handles the GetBucketPosition RPC
func (s *Server) GetBucketPosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	report, err := s.PortfolioService.GetBucketPosition(ctx, in.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(report)
}

// GetAvailableDates handles the GetAvailableDates RPC
func (s *Server) GetAvailableDates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in symbolRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}

	dates, err := s.PortfolioService.GetAvailableDates(ctx, in.Symbol)
	if err != nil {
		return nil, mapError(err)
	}
	return encode(map[string]any{"dates": dates})
}

// decode maps a Struct request onto a typed request.
// Numbers arrive as float64 and dates as RFC3339 or YYYY-MM-DD strings.
func decode(req *structpb.Struct, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToTimeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return status.Errorf(codes.Internal, "build decoder: %v", err)
	}
	if err := dec.Decode(req.AsMap()); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func stringToTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// wholeShares converts a Struct number to a share count.
// Fractions and values outside the int64 range are rejected.
func wholeShares(q float64) (int64, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) || q != math.Trunc(q) {
		return 0, fmt.Errorf("quantity must be a whole number of shares, got %v", q)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range
	if q < math.MinInt64 || q >= math.MaxInt64 {
		return 0, fmt.Errorf("quantity out of range: %v", q)
	}
	return int64(q), nil
}

// encode renders a response through its JSON form, so field names and
// decimal formatting match the HTTP API
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	kind := domain.KindOf(err)
	switch kind.Class {
	case domain.ClassInvalidArgument:
		return status.Errorf(codes.InvalidArgument, "%s: %v", kind.Name, err)
	case domain.ClassNotFound:
		return status.Errorf(codes.NotFound, "%s: %v", kind.Name, err)
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}
