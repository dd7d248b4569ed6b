package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColorMode selects true-color or binary tracing.
type ColorMode string

const (
	ColorModeColor ColorMode = "color"
	ColorModeBW    ColorMode = "bw"
)

// HierarchicalMode controls whether traced shapes are stacked or cut out of each other.
type HierarchicalMode string

const (
	HierarchicalStacked HierarchicalMode = "stacked"
	HierarchicalCutout  HierarchicalMode = "cutout"
)

// CurveMode is the path-fitting mode.
type CurveMode string

const (
	CurveModePixel   CurveMode = "pixel"
	CurveModePolygon CurveMode = "polygon"
	CurveModeSpline  CurveMode = "spline"
)

// Presets understood by the engine. A preset overrides the individual fields.
const (
	PresetBW     = "bw"
	PresetPoster = "poster"
	PresetPhoto  = "photo"
)

// Options is the resolved tracing configuration. Every field is always set.
type Options struct {
	ColorMode       ColorMode        `json:"color_mode"`
	Hierarchical    HierarchicalMode `json:"hierarchical"`
	Mode            CurveMode        `json:"mode"`
	FilterSpeckle   int              `json:"filter_speckle"`
	ColorPrecision  int              `json:"color_precision"`
	GradientStep    int              `json:"gradient_step"`
	CornerThreshold int              `json:"corner_threshold"`
	SegmentLength   float64          `json:"segment_length"`
	SpliceThreshold int              `json:"splice_threshold"`
	PathPrecision   int              `json:"path_precision"`
	Preset          string           `json:"preset,omitempty"`
}

// DefaultOptions returns the canonical default profile. The numbers are the
// engine's own defaults so an empty request traces exactly like a bare
// vtracer invocation.
func DefaultOptions() Options {
	return Options{
		ColorMode:       ColorModeColor,
		Hierarchical:    HierarchicalStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   4,
		ColorPrecision:  6,
		GradientStep:    16,
		CornerThreshold: 60,
		SegmentLength:   4.0,
		SpliceThreshold: 45,
		PathPrecision:   3,
	}
}

// Resolution is the outcome of resolving client options: the total option
// set plus one note per malformed value that fell back to its default.
type Resolution struct {
	Options Options
	Issues  []string
}

var (
	colorModes = map[string]ColorMode{
		"color":  ColorModeColor,
		"bw":     ColorModeBW,
		"binary": ColorModeBW,
	}
	hierarchicalModes = map[string]HierarchicalMode{
		"stacked": HierarchicalStacked,
		"cutout":  HierarchicalCutout,
	}
	curveModes = map[string]CurveMode{
		"pixel":   CurveModePixel,
		"none":    CurveModePixel,
		"polygon": CurveModePolygon,
		"spline":  CurveModeSpline,
	}
)

type optionField struct {
	keys  []string
	apply func(o *Options, raw json.RawMessage) error
}

var optionFields = []optionField{
	{keys: []string{"color_mode"}, apply: func(o *Options, raw json.RawMessage) error {
		v, err := decodeEnum(raw, colorModes)
		if err == nil {
			o.ColorMode = v
		}
		return err
	}},
	{keys: []string{"hierarchical"}, apply: func(o *Options, raw json.RawMessage) error {
		v, err := decodeEnum(raw, hierarchicalModes)
		if err == nil {
			o.Hierarchical = v
		}
		return err
	}},
	{keys: []string{"mode"}, apply: func(o *Options, raw json.RawMessage) error {
		v, err := decodeEnum(raw, curveModes)
		if err == nil {
			o.Mode = v
		}
		return err
	}},
	{keys: []string{"filter_speckle"}, apply: intSetter(func(o *Options, v int) { o.FilterSpeckle = v })},
	{keys: []string{"color_precision"}, apply: intSetter(func(o *Options, v int) { o.ColorPrecision = v })},
	{keys: []string{"gradient_step", "layer_difference"}, apply: intSetter(func(o *Options, v int) { o.GradientStep = v })},
	{keys: []string{"corner_threshold"}, apply: intSetter(func(o *Options, v int) { o.CornerThreshold = v })},
	{keys: []string{"segment_length", "length_threshold"}, apply: func(o *Options, raw json.RawMessage) error {
		v, err := decodeFloat(raw)
		if err == nil {
			o.SegmentLength = v
		}
		return err
	}},
	{keys: []string{"splice_threshold"}, apply: intSetter(func(o *Options, v int) { o.SpliceThreshold = v })},
	{keys: []string{"path_precision"}, apply: intSetter(func(o *Options, v int) { o.PathPrecision = v })},
	{keys: []string{"preset"}, apply: func(o *Options, raw json.RawMessage) error {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		switch p := v.(type) {
		case nil:
			return nil
		case string:
			o.Preset = p
			return nil
		default:
			return fmt.Errorf("expected a string, got %s", describe(v))
		}
	}},
}

// ResolveOptions turns the raw options text sent by a client into a total
// option set. It never fails: text that is not a JSON object yields the
// defaults, and each malformed field keeps its own default. Unknown keys are
// ignored.
func ResolveOptions(raw string) Resolution {
	res := Resolution{Options: DefaultOptions()}
	if strings.TrimSpace(raw) == "" {
		return res
	}

	var supplied map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &supplied); err != nil {
		res.Issues = append(res.Issues, "options are not a JSON object, using defaults: "+err.Error())
		return res
	}

	for _, f := range optionFields {
		key, value, ok := lookup(supplied, f.keys)
		if !ok {
			continue
		}
		if err := f.apply(&res.Options, value); err != nil {
			res.Issues = append(res.Issues, fmt.Sprintf("option %q ignored: %v", key, err))
		}
	}
	return res
}

// lookup returns the first of keys present in m; earlier keys win over aliases.
func lookup(m map[string]json.RawMessage, keys []string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

func intSetter(set func(o *Options, v int)) func(o *Options, raw json.RawMessage) error {
	return func(o *Options, raw json.RawMessage) error {
		v, err := decodeInt(raw)
		if err == nil {
			set(o, v)
		}
		return err
	}
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", describe(v))
	}
}

func decodeInt(raw json.RawMessage) (int, error) {
	f, err := decodeFloat(raw)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int(f), nil
}

func decodeEnum[T ~string](raw json.RawMessage, allowed map[string]T) (T, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected a string")
	}
	v, ok := allowed[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported value %q", s)
	}
	return v, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
