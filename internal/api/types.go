package api

import (
	"fmt"
	"math"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/shij-yuan/lucky-draw/internal/store"
	"github.com/shij-yuan/lucky-draw/internal/wheel"
)

// Error type constants for structured error responses.
const (
	ErrTypeValidation = "VALIDATION_ERROR"
	ErrTypeNotFound   = "NOT_FOUND"
	ErrTypeInternal   = "INTERNAL_ERROR"
	ErrTypeConflict   = "CONFLICT"
)

// ServiceError is the JSON error body returned by all endpoints.
type ServiceError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// PrizeInput is one prize in a replace request.
type PrizeInput struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Value string `json:"value,omitempty"`
}

// ReplacePrizesRequest replaces the whole prize list, in wheel order.
type ReplacePrizesRequest struct {
	Prizes []PrizeInput `json:"prizes"`
}

// PrizesResponse wraps a prize list.
type PrizesResponse struct {
	Prizes []store.Prize `json:"prizes"`
}

// SpinRequest asks for a server-side spin simulation. Velocity is the release
// velocity in rad/s; when omitted the server picks one in the natural gesture
// range with a random direction.
type SpinRequest struct {
	Velocity *float64 `json:"velocity,omitempty"`
}

// SpinResponse is the result of a simulated spin.
type SpinResponse struct {
	WinnerIndex     int         `json:"winner_index"`
	Prize           store.Prize `json:"prize"`
	ReleaseVelocity float64     `json:"release_velocity"`
	Rotation        float64     `json:"rotation"`
	Ticks           int         `json:"ticks"`
	DurationMs      int64       `json:"duration_ms"`
	Draw            store.Draw  `json:"draw"`
}

// Prize list bounds enforced by the editor surface.
const (
	minPrizes     = 2
	maxPrizes     = 12
	maxLabelChars = 64
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateReplacePrizes validates a prize replacement request.
func ValidateReplacePrizes(req *ReplacePrizesRequest) error {
	if len(req.Prizes) < minPrizes || len(req.Prizes) > maxPrizes {
		return fmt.Errorf("prize count must be between %d and %d, got %d", minPrizes, maxPrizes, len(req.Prizes))
	}
	for i, p := range req.Prizes {
		if p.Label == "" {
			return fmt.Errorf("prize %d: label is required", i)
		}
		if len(p.Label) > maxLabelChars {
			return fmt.Errorf("prize %d: label too long (max %d chars)", i, maxLabelChars)
		}
		if !colorPattern.MatchString(p.Color) {
			return fmt.Errorf("prize %d: color must be a #rrggbb hex value, got %q", i, p.Color)
		}
		if p.Value != "" {
			v, err := decimal.NewFromString(p.Value)
			if err != nil {
				return fmt.Errorf("prize %d: invalid value %q", i, p.Value)
			}
			if v.IsNegative() {
				return fmt.Errorf("prize %d: value must be >= 0", i)
			}
		}
	}
	return nil
}

// ValidateSpinRequest validates a spin simulation request.
func ValidateSpinRequest(req *SpinRequest) error {
	if req.Velocity == nil {
		return nil
	}
	v := *req.Velocity
	if math.Abs(v) > wheel.MaxReleaseVelocity {
		return fmt.Errorf("velocity must be within ±%g rad/s, got %g", wheel.MaxReleaseVelocity, v)
	}
	if math.Abs(v) <= wheel.SpinThreshold {
		return fmt.Errorf("velocity must exceed the %g rad/s spin threshold, got %g", wheel.SpinThreshold, v)
	}
	return nil
}

// toStorePrizes converts validated inputs to store prizes.
func toStorePrizes(inputs []PrizeInput) []store.Prize {
	prizes := make([]store.Prize, len(inputs))
	for i, in := range inputs {
		value := decimal.Zero
		if in.Value != "" {
			value, _ = decimal.NewFromString(in.Value) // validated above
		}
		prizes[i] = store.Prize{
			Label:    in.Label,
			Color:    in.Color,
			Value:    value,
			Position: i,
		}
	}
	return prizes
}
