package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrInvalidConfig is wrapped by every validation failure so callers can
// distinguish a bad configuration from an I/O problem.
var ErrInvalidConfig = errors.New("invalid configuration")

// TuningConfig represents the root configuration for gesture and scene
// tuning. Every field is optional; the Get* accessors supply defaults for
// anything omitted, so partial files are safe.
type TuningConfig struct {
	// Debounce params
	ConfirmFrames       *int     `json:"confirm_frames,omitempty"`
	CooldownFrames      *int     `json:"cooldown_frames,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	RotateGain          *float64 `json:"rotate_gain,omitempty"` // degrees per normalized unit of hand travel

	// Grid and camera params
	GridMin        *[3]int  `json:"grid_min,omitempty"`
	GridMax        *[3]int  `json:"grid_max,omitempty"`
	DepthScale     *float64 `json:"depth_scale,omitempty"`
	CameraYaw      *float64 `json:"camera_yaw,omitempty"`
	CameraPitch    *float64 `json:"camera_pitch,omitempty"`
	CameraDistance *float64 `json:"camera_distance,omitempty"`
	PitchLimit     *float64 `json:"pitch_limit,omitempty"`

	// Scene params
	Palette      []string `json:"palette,omitempty"` // "#rrggbb"
	HistoryCap   *int     `json:"history_cap,omitempty"`
	DemoPlatform *bool    `json:"demo_platform,omitempty"`

	// Classifier params, in hand-scale units unless noted
	CurlThreshold      *float64 `json:"curl_threshold,omitempty"`
	ExtendThreshold    *float64 `json:"extend_threshold,omitempty"`
	PinchThreshold     *float64 `json:"pinch_threshold,omitempty"`
	ThumbExtendMargin  *float64 `json:"thumb_extend_margin,omitempty"`
	PalmFacingMin      *float64 `json:"palm_facing_min,omitempty"`
	MaxExtendedBendDeg *float64 `json:"max_extended_bend_deg,omitempty"`
	MarginBand         *float64 `json:"margin_band,omitempty"`

	// Landmark preprocessing params
	SmoothingAlpha *float64 `json:"smoothing_alpha,omitempty"`
	JumpThreshold  *float64 `json:"jump_threshold,omitempty"`
	MaxWristSpeed  *float64 `json:"max_wrist_speed,omitempty"` // normalized units per second, 0 disables
	NoHandTimeout  *string  `json:"no_hand_timeout,omitempty"` // duration string like "500ms"
}

// DefaultPalette is the palette used when none is configured.
var DefaultPalette = []string{
	"#ff6432", // orange
	"#3296ff", // blue
	"#32ff64", // green
	"#ff3296", // pink
	"#ffff32", // yellow
	"#9632ff", // purple
	"#ffffff", // white
	"#646464", // gray
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	gridMin, gridMax := e.GetGridMin(), e.GetGridMax()
	return &TuningConfig{
		ConfirmFrames:       ptrInt(e.GetConfirmFrames()),
		CooldownFrames:      ptrInt(e.GetCooldownFrames()),
		ConfidenceThreshold: ptrFloat64(e.GetConfidenceThreshold()),
		RotateGain:          ptrFloat64(e.GetRotateGain()),
		GridMin:             &gridMin,
		GridMax:             &gridMax,
		DepthScale:          ptrFloat64(e.GetDepthScale()),
		CameraYaw:           ptrFloat64(e.GetCameraYaw()),
		CameraPitch:         ptrFloat64(e.GetCameraPitch()),
		CameraDistance:      ptrFloat64(e.GetCameraDistance()),
		PitchLimit:          ptrFloat64(e.GetPitchLimit()),
		Palette:             append([]string(nil), DefaultPalette...),
		HistoryCap:          ptrInt(e.GetHistoryCap()),
		DemoPlatform:        ptrBool(e.GetDemoPlatform()),
		CurlThreshold:       ptrFloat64(e.GetCurlThreshold()),
		ExtendThreshold:     ptrFloat64(e.GetExtendThreshold()),
		PinchThreshold:      ptrFloat64(e.GetPinchThreshold()),
		ThumbExtendMargin:   ptrFloat64(e.GetThumbExtendMargin()),
		PalmFacingMin:       ptrFloat64(e.GetPalmFacingMin()),
		MaxExtendedBendDeg:  ptrFloat64(e.GetMaxExtendedBendDeg()),
		MarginBand:          ptrFloat64(e.GetMarginBand()),
		SmoothingAlpha:      ptrFloat64(e.GetSmoothingAlpha()),
		JumpThreshold:       ptrFloat64(e.GetJumpThreshold()),
		MaxWristSpeed:       ptrFloat64(e.GetMaxWristSpeed()),
		NoHandTimeout:       ptrString(e.GetNoHandTimeout().String()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/sculpt/pipeline/
		"../../../../" + DefaultConfigPath,    // from internal/sculpt/storage/sqlite/
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the configuration values are valid. Every error
// wraps ErrInvalidConfig.
func (c *TuningConfig) Validate() error {
	if c.ConfirmFrames != nil && *c.ConfirmFrames <= 0 {
		return invalidf("confirm_frames must be positive, got %d", *c.ConfirmFrames)
	}
	if c.CooldownFrames != nil && *c.CooldownFrames < 0 {
		return invalidf("cooldown_frames must be non-negative, got %d", *c.CooldownFrames)
	}
	if c.ConfidenceThreshold != nil {
		if v := *c.ConfidenceThreshold; v < 0 || v > 1 || math.IsNaN(v) {
			return invalidf("confidence_threshold must be between 0 and 1, got %f", v)
		}
	}

	gridMin, gridMax := c.GetGridMin(), c.GetGridMax()
	for axis := 0; axis < 3; axis++ {
		if gridMin[axis] > gridMax[axis] {
			return invalidf("grid_min %v exceeds grid_max %v on axis %d", gridMin, gridMax, axis)
		}
	}

	if c.Palette != nil && len(c.Palette) == 0 {
		return invalidf("palette must not be empty")
	}
	for i, hex := range c.Palette {
		if _, err := ParseHexColor(hex); err != nil {
			return invalidf("palette[%d]: %v", i, err)
		}
	}
	if c.HistoryCap != nil && *c.HistoryCap <= 0 {
		return invalidf("history_cap must be positive, got %d", *c.HistoryCap)
	}
	if c.PitchLimit != nil && (*c.PitchLimit <= 0 || *c.PitchLimit >= 90) {
		return invalidf("pitch_limit must be in (0, 90), got %f", *c.PitchLimit)
	}
	if c.CameraDistance != nil && *c.CameraDistance <= 0 {
		return invalidf("camera_distance must be positive, got %f", *c.CameraDistance)
	}

	if curl, extend := c.GetCurlThreshold(), c.GetExtendThreshold(); curl >= extend {
		return invalidf("curl_threshold (%f) must be below extend_threshold (%f)", curl, extend)
	}
	if c.MarginBand != nil && *c.MarginBand <= 0 {
		return invalidf("margin_band must be positive, got %f", *c.MarginBand)
	}

	if c.SmoothingAlpha != nil && (*c.SmoothingAlpha <= 0 || *c.SmoothingAlpha > 1) {
		return invalidf("smoothing_alpha must be in (0, 1], got %f", *c.SmoothingAlpha)
	}
	if c.MaxWristSpeed != nil && *c.MaxWristSpeed < 0 {
		return invalidf("max_wrist_speed must be non-negative, got %f", *c.MaxWristSpeed)
	}
	if c.NoHandTimeout != nil && *c.NoHandTimeout != "" {
		if _, err := time.ParseDuration(*c.NoHandTimeout); err != nil {
			return invalidf("invalid no_hand_timeout '%s': %v", *c.NoHandTimeout, err)
		}
	}

	return nil
}

// ParseHexColor parses "#rrggbb" (the leading '#' is optional) into an
// opaque RGBA colour.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// GetConfirmFrames returns the confirm_frames value or the default.
func (c *TuningConfig) GetConfirmFrames() int {
	if c.ConfirmFrames == nil {
		return 3
	}
	return *c.ConfirmFrames
}

// GetCooldownFrames returns the cooldown_frames value or the default.
func (c *TuningConfig) GetCooldownFrames() int {
	if c.CooldownFrames == nil {
		return 10
	}
	return *c.CooldownFrames
}

// GetConfidenceThreshold returns the confidence_threshold value or the default.
func (c *TuningConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.6
	}
	return *c.ConfidenceThreshold
}

// GetRotateGain returns the rotate_gain value or the default.
func (c *TuningConfig) GetRotateGain() float64 {
	if c.RotateGain == nil {
		return 200
	}
	return *c.RotateGain
}

// GetGridMin returns the inclusive lower grid corner or the default.
func (c *TuningConfig) GetGridMin() [3]int {
	if c.GridMin == nil {
		return [3]int{0, 0, 0}
	}
	return *c.GridMin
}

// GetGridMax returns the inclusive upper grid corner or the default.
func (c *TuningConfig) GetGridMax() [3]int {
	if c.GridMax == nil {
		return [3]int{15, 15, 15}
	}
	return *c.GridMax
}

// GetDepthScale returns the depth_scale value (cells per unit of landmark z).
func (c *TuningConfig) GetDepthScale() float64 {
	if c.DepthScale == nil {
		return 50
	}
	return *c.DepthScale
}

// GetCameraYaw returns the initial camera yaw in degrees.
func (c *TuningConfig) GetCameraYaw() float64 {
	if c.CameraYaw == nil {
		return 45
	}
	return *c.CameraYaw
}

// GetCameraPitch returns the initial camera pitch in degrees.
func (c *TuningConfig) GetCameraPitch() float64 {
	if c.CameraPitch == nil {
		return 30
	}
	return *c.CameraPitch
}

// GetCameraDistance returns the orbit distance from the grid centre.
func (c *TuningConfig) GetCameraDistance() float64 {
	if c.CameraDistance == nil {
		return 35
	}
	return *c.CameraDistance
}

// GetPitchLimit returns the absolute pitch clamp in degrees.
func (c *TuningConfig) GetPitchLimit() float64 {
	if c.PitchLimit == nil {
		return 80
	}
	return *c.PitchLimit
}

// GetPalette parses the configured palette, falling back to DefaultPalette.
// Entries are validated by Validate; an unparsable entry here is an error.
func (c *TuningConfig) GetPalette() ([]color.RGBA, error) {
	hexes := c.Palette
	if hexes == nil {
		hexes = DefaultPalette
	}
	if len(hexes) == 0 {
		return nil, invalidf("palette must not be empty")
	}
	out := make([]color.RGBA, 0, len(hexes))
	for i, h := range hexes {
		rgba, err := ParseHexColor(h)
		if err != nil {
			return nil, invalidf("palette[%d]: %v", i, err)
		}
		out = append(out, rgba)
	}
	return out, nil
}

// GetHistoryCap returns the history_cap value or the default.
func (c *TuningConfig) GetHistoryCap() int {
	if c.HistoryCap == nil {
		return 50
	}
	return *c.HistoryCap
}

// GetDemoPlatform returns the demo_platform value or the default.
func (c *TuningConfig) GetDemoPlatform() bool {
	if c.DemoPlatform == nil {
		return true
	}
	return *c.DemoPlatform
}

// GetCurlThreshold returns the curl_threshold value or the default.
func (c *TuningConfig) GetCurlThreshold() float64 {
	if c.CurlThreshold == nil {
		return 0.75
	}
	return *c.CurlThreshold
}

// GetExtendThreshold returns the extend_threshold value or the default.
func (c *TuningConfig) GetExtendThreshold() float64 {
	if c.ExtendThreshold == nil {
		return 1.05
	}
	return *c.ExtendThreshold
}

// GetPinchThreshold returns the pinch_threshold value or the default.
func (c *TuningConfig) GetPinchThreshold() float64 {
	if c.PinchThreshold == nil {
		return 0.3
	}
	return *c.PinchThreshold
}

// GetThumbExtendMargin returns the thumb_extend_margin value or the default.
func (c *TuningConfig) GetThumbExtendMargin() float64 {
	if c.ThumbExtendMargin == nil {
		return 0.2
	}
	return *c.ThumbExtendMargin
}

// GetPalmFacingMin returns the palm_facing_min value or the default.
func (c *TuningConfig) GetPalmFacingMin() float64 {
	if c.PalmFacingMin == nil {
		return 0.5
	}
	return *c.PalmFacingMin
}

// GetMaxExtendedBendDeg returns the max_extended_bend_deg value or the default.
func (c *TuningConfig) GetMaxExtendedBendDeg() float64 {
	if c.MaxExtendedBendDeg == nil {
		return 50
	}
	return *c.MaxExtendedBendDeg
}

// GetMarginBand returns the margin_band value or the default.
func (c *TuningConfig) GetMarginBand() float64 {
	if c.MarginBand == nil {
		return 0.4
	}
	return *c.MarginBand
}

// GetSmoothingAlpha returns the smoothing_alpha value or the default.
func (c *TuningConfig) GetSmoothingAlpha() float64 {
	if c.SmoothingAlpha == nil {
		return 0.6
	}
	return *c.SmoothingAlpha
}

// GetJumpThreshold returns the jump_threshold value or the default.
func (c *TuningConfig) GetJumpThreshold() float64 {
	if c.JumpThreshold == nil {
		return 0.1
	}
	return *c.JumpThreshold
}

// GetMaxWristSpeed returns the max_wrist_speed value or the default.
func (c *TuningConfig) GetMaxWristSpeed() float64 {
	if c.MaxWristSpeed == nil {
		return 5.0
	}
	return *c.MaxWristSpeed
}

// GetNoHandTimeout parses and returns the NoHandTimeout as a time.Duration.
func (c *TuningConfig) GetNoHandTimeout() time.Duration {
	if c.NoHandTimeout == nil || *c.NoHandTimeout == "" {
		return 500 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.NoHandTimeout)
	if err != nil {
		return 500 * time.Millisecond // default on parse error
	}
	return d
}
