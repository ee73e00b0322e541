package sink

import (
	"encoding/json"

	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/render/chart"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	overflow *layout.Overflow
	config   *layout.Config
	indent   bool
}

// WithJSONOverflow records how far the chart spills past the WBS block.
func WithJSONOverflow(o layout.Overflow) JSONOption {
	return func(r *jsonRenderer) { r.overflow = &o }
}

// WithJSONConfig embeds the layout config, making the output enough to
// reproduce the chart.
func WithJSONConfig(cfg layout.Config) JSONOption {
	return func(r *jsonRenderer) { r.config = &cfg }
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	chart.Chart
	Units    string           `json:"units"`
	Overflow *layout.Overflow `json:"overflow,omitempty"`
	Config   *layout.Config   `json:"config,omitempty"`
}

// RenderJSON encodes the chart with its canvas metadata.
func RenderJSON(c chart.Chart, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Chart: c, Units: "cm", Overflow: r.overflow, Config: r.config}
	if out.Boxes == nil {
		out.Boxes = []chart.Box{}
	}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// ReadJSON decodes output of [RenderJSON] back into a chart.
func ReadJSON(data []byte) (chart.Chart, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return chart.Chart{}, err
	}
	return out.Chart, nil
}
