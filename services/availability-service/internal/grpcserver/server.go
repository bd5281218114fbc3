//go:build protogen

package grpcserver

import (
	"context"
	"errors"
	"time"

	availabilityv1 "github.com/scheduleops/freebusy/protos/gen/availability/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/scheduleops/freebusy/services/availability-service/internal/availability"
	"github.com/scheduleops/freebusy/services/availability-service/internal/interval"
	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

type server struct {
	availabilityv1.UnimplementedAvailabilityServiceServer
	offsets tz.OffsetResolver
}

func Register(grpcServer *grpc.Server, offsets tz.OffsetResolver) {
	availabilityv1.RegisterAvailabilityServiceServer(grpcServer, &server{offsets: offsets})
}

func rulesFromProto(in []*availabilityv1.WeeklyRule) ([]availability.WeeklyRule, error) {
	out := make([]availability.WeeklyRule, 0, len(in))
	for _, r := range in {
		wd := r.GetWeekday()
		if wd < 0 || wd > 6 {
			return nil, status.Error(codes.InvalidArgument, "weekday must be between 0 and 6")
		}
		out = append(out, availability.WeeklyRule{
			Weekday: time.Weekday(wd),
			Start:   r.GetStart(),
			End:     r.GetEnd(),
		})
	}
	return out, nil
}

func windowsFromProto(in []*availabilityv1.TimeWindow) ([]interval.Interval, error) {
	out := make([]interval.Interval, 0, len(in))
	for _, w := range in {
		iv := interval.Interval{
			Start: w.GetStart().AsTime(),
			End:   w.GetEnd().AsTime(),
		}
		if iv.Empty() {
			return nil, status.Error(codes.InvalidArgument, "window end must be after start")
		}
		out = append(out, iv)
	}
	return out, nil
}

func windowsToProto(in []interval.Interval) []*availabilityv1.TimeWindow {
	out := make([]*availabilityv1.TimeWindow, 0, len(in))
	for _, iv := range in {
		out = append(out, &availabilityv1.TimeWindow{
			Start: timestamppb.New(iv.Start),
			End:   timestamppb.New(iv.End),
		})
	}
	return out
}

func (s *server) expand(req interface {
	GetWindowStart() *timestamppb.Timestamp
	GetWindowEnd() *timestamppb.Timestamp
	GetTimezone() string
	GetRules() []*availabilityv1.WeeklyRule
}) ([]interval.Interval, error) {
	rules, err := rulesFromProto(req.GetRules())
	if err != nil {
		return nil, err
	}
	out, err := availability.Expand(
		req.GetWindowStart().AsTime(),
		req.GetWindowEnd().AsTime(),
		rules,
		req.GetTimezone(),
		s.offsets,
	)
	if err != nil {
		switch {
		case errors.Is(err, tz.ErrUnknownZone):
			return nil, status.Error(codes.InvalidArgument, "unknown timezone")
		case errors.Is(err, availability.ErrInvalidClock), errors.Is(err, availability.ErrInvalidWeekday):
			return nil, status.Error(codes.InvalidArgument, "invalid rule")
		default:
			return nil, status.Error(codes.Internal, "availability expansion failed")
		}
	}
	return out, nil
}

func (s *server) ExpandAvailability(_ context.Context, req *availabilityv1.ExpandAvailabilityRequest) (*availabilityv1.ExpandAvailabilityResponse, error) {
	out, err := s.expand(req)
	if err != nil {
		return nil, err
	}
	return &availabilityv1.ExpandAvailabilityResponse{
		Intervals: windowsToProto(out),
	}, nil
}

func (s *server) ComputeFreeWindows(_ context.Context, req *availabilityv1.ComputeFreeWindowsRequest) (*availabilityv1.ComputeFreeWindowsResponse, error) {
	busy, err := windowsFromProto(req.GetBusy())
	if err != nil {
		return nil, err
	}
	sources, err := s.expand(req)
	if err != nil {
		return nil, err
	}

	free, err := interval.SubtractAll(sources, busy)
	if err != nil {
		return nil, status.Error(codes.Internal, "interval subtraction failed")
	}
	if mins := req.GetMinDurationMinutes(); mins > 0 {
		free = interval.Filter(free, interval.LongerThan(time.Duration(mins)*time.Minute))
	}

	return &availabilityv1.ComputeFreeWindowsResponse{
		Windows: windowsToProto(free),
	}, nil
}
