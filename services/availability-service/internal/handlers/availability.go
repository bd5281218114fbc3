package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/scheduleops/freebusy/services/availability-service/internal/availability"
	"github.com/scheduleops/freebusy/services/availability-service/internal/interval"
	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

var tracer = otel.Tracer("availability-service/handlers")

type Handler struct {
	offsets tz.OffsetResolver
	logger  *slog.Logger
}

func New(offsets tz.OffsetResolver, logger *slog.Logger) *Handler {
	return &Handler{offsets: offsets, logger: logger}
}

type timeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ruleSpec struct {
	Weekday int    `json:"weekday"` // 0 = Sunday .. 6 = Saturday
	Start   string `json:"start"`  // "HH:MM"
	End     string `json:"end"`
}

func parseWindow(w timeWindow) (interval.Interval, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(w.Start))
	if err != nil {
		return interval.Interval{}, err
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(w.End))
	if err != nil {
		return interval.Interval{}, err
	}
	return interval.Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// parseBusy rejects empty or inverted entries up front so they never reach
// the subtraction engine, where a degenerate pair is a consistency fault.
func parseBusy(in []timeWindow) ([]interval.Interval, error) {
	out := make([]interval.Interval, 0, len(in))
	for _, w := range in {
		iv, err := parseWindow(w)
		if err != nil {
			return nil, err
		}
		if iv.Empty() {
			return nil, errors.New("end must be after start")
		}
		out = append(out, iv)
	}
	return out, nil
}

func toRules(in []ruleSpec) ([]availability.WeeklyRule, bool) {
	out := make([]availability.WeeklyRule, 0, len(in))
	for _, r := range in {
		if r.Weekday < 0 || r.Weekday > 6 {
			return nil, false
		}
		out = append(out, availability.WeeklyRule{
			Weekday: time.Weekday(r.Weekday),
			Start:   strings.TrimSpace(r.Start),
			End:     strings.TrimSpace(r.End),
		})
	}
	return out, true
}

func encodeWindows(in []interval.Interval) []timeWindow {
	out := make([]timeWindow, 0, len(in))
	for _, iv := range in {
		out = append(out, timeWindow{
			Start: iv.Start.UTC().Format(time.RFC3339),
			End:   iv.End.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) expandFromRequest(w http.ResponseWriter, req expandRequest) ([]interval.Interval, bool) {
	window, err := parseWindow(timeWindow{Start: req.WindowStart, End: req.WindowEnd})
	if err != nil {
		http.Error(w, "invalid window_start/window_end (RFC3339)", http.StatusBadRequest)
		return nil, false
	}
	rules, ok := toRules(req.Rules)
	if !ok {
		http.Error(w, "weekday must be between 0 and 6", http.StatusBadRequest)
		return nil, false
	}

	out, err := availability.Expand(window.Start, window.End, rules, strings.TrimSpace(req.Timezone), h.offsets)
	if err != nil {
		switch {
		case errors.Is(err, tz.ErrUnknownZone):
			http.Error(w, "unknown timezone", http.StatusBadRequest)
		case errors.Is(err, availability.ErrInvalidClock), errors.Is(err, availability.ErrInvalidWeekday):
			http.Error(w, "invalid rule", http.StatusBadRequest)
		default:
			h.logger.Error("availability expansion failed", "err", err)
			http.Error(w, "failed to expand availability", http.StatusInternalServerError)
		}
		return nil, false
	}
	return out, true
}

type expandRequest struct {
	WindowStart string     `json:"window_start"`
	WindowEnd   string     `json:"window_end"`
	Timezone    string     `json:"timezone"`
	Rules       []ruleSpec `json:"rules"`
}

func (h *Handler) ExpandAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req expandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	_, span := tracer.Start(r.Context(), "availability.expand",
		trace.WithAttributes(
			attribute.String("availability.timezone", req.Timezone),
			attribute.Int("availability.rules", len(req.Rules)),
		),
	)
	defer span.End()

	out, ok := h.expandFromRequest(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intervals": encodeWindows(out),
	})
}

type freeRequest struct {
	expandRequest
	Busy               []timeWindow `json:"busy"`
	MinDurationMinutes int          `json:"min_duration_minutes"`
}

type freeSlot struct {
	SlotID string `json:"slot_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (h *Handler) FreeWindows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req freeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.MinDurationMinutes < 0 {
		http.Error(w, "invalid min_duration_minutes", http.StatusBadRequest)
		return
	}
	busy, err := parseBusy(req.Busy)
	if err != nil {
		http.Error(w, "invalid busy interval", http.StatusBadRequest)
		return
	}

	_, span := tracer.Start(r.Context(), "availability.free",
		trace.WithAttributes(
			attribute.String("availability.timezone", req.Timezone),
			attribute.Int("availability.rules", len(req.Rules)),
			attribute.Int("availability.busy", len(busy)),
		),
	)
	defer span.End()

	sources, ok := h.expandFromRequest(w, req.expandRequest)
	if !ok {
		return
	}

	free, err := interval.SubtractAll(sources, busy)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("interval subtraction failed", "err", err)
		http.Error(w, "failed to compute free windows", http.StatusInternalServerError)
		return
	}
	if req.MinDurationMinutes > 0 {
		free = interval.Filter(free, interval.LongerThan(time.Duration(req.MinDurationMinutes)*time.Minute))
	}

	slots := make([]freeSlot, 0, len(free))
	for _, iv := range free {
		slots = append(slots, freeSlot{
			SlotID: uuid.NewString(),
			Start:  iv.Start.UTC().Format(time.RFC3339),
			End:    iv.End.UTC().Format(time.RFC3339),
		})
	}
	days := make(map[string][]timeWindow)
	for date, ivs := range interval.BucketByLocalDate(free) {
		days[date] = encodeWindows(ivs)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slots": slots,
		"days":  days,
	})
}

type subtractRequest struct {
	Sources []timeWindow `json:"sources"`
	Busy    []timeWindow `json:"busy"`
}

func (h *Handler) SubtractIntervals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req subtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	sources, err := parseBusy(req.Sources)
	if err != nil {
		http.Error(w, "invalid source interval", http.StatusBadRequest)
		return
	}
	busy, err := parseBusy(req.Busy)
	if err != nil {
		http.Error(w, "invalid busy interval", http.StatusBadRequest)
		return
	}

	_, span := tracer.Start(r.Context(), "intervals.subtract",
		trace.WithAttributes(
			attribute.Int("intervals.sources", len(sources)),
			attribute.Int("intervals.busy", len(busy)),
		),
	)
	defer span.End()

	out, err := interval.SubtractAll(sources, busy)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("interval subtraction failed", "err", err)
		http.Error(w, "failed to subtract intervals", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"intervals": encodeWindows(out),
	})
}

func (h *Handler) ValidateTimezone(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	zone := strings.TrimSpace(r.URL.Query().Get("zone"))
	if zone == "" {
		http.Error(w, "zone is required", http.StatusBadRequest)
		return
	}

	valid := tz.Validate(zone) == nil
	writeJSON(w, http.StatusOK, map[string]any{
		"zone":  zone,
		"valid": valid,
	})
}
