package model

// Point is one (x, y) knot. X is percent of initial price, Y is annualized return in percent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a polyline drawn left to right.
type Segment struct {
	Points  []Point `json:"points"`
	Markers bool    `json:"markers"`
}

// Annotation is a text label anchored at a data position.
type Annotation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Align string  `json:"align"`
}

// Text alignments understood by renderers.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
)

// Tick is an axis tick position with its label.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Geometry is everything a renderer needs to draw a payoff chart.
// It is recomputed from Params on every read and never mutated.
type Geometry struct {
	Variant     Variant      `json:"variant"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	XLabel      string       `json:"x_label"`
	Legend      string       `json:"legend"`
	Segments    []Segment    `json:"segments"`
	Annotations []Annotation `json:"annotations"`
	XTicks      []Tick       `json:"x_ticks"`
	YTicks      []Tick       `json:"y_ticks"`
	YRange      [2]float64   `json:"y_range"`
	HLines      []float64    `json:"h_lines"`
	VLines      []float64    `json:"v_lines,omitempty"`
}
