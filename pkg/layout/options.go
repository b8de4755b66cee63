package layout

// Default card geometry and spacing in chart units.
const (
	DefaultCardWidth     = 220.0
	DefaultCardHeight    = 80.0
	DefaultUnitGap       = 40.0
	DefaultSpouseGap     = 10.0
	DefaultGenerationGap = 120.0
	DefaultComponentGap  = 120.0
	DefaultMargin        = 40.0
)

// Options configures the layout engine. Zero fields take their defaults.
type Options struct {
	Orientation   Orientation `toml:"orientation"`
	CardWidth     float64     `toml:"card_width"`
	CardHeight    float64     `toml:"card_height"`
	UnitGap       float64     `toml:"unit_gap"`
	SpouseGap     float64     `toml:"spouse_gap"`
	GenerationGap float64     `toml:"generation_gap"`
	ComponentGap  float64     `toml:"component_gap"`
	Margin        float64     `toml:"margin"`
}

// DefaultOptions returns the default vertical layout options.
func DefaultOptions() Options {
	return Options{
		Orientation:   Vertical,
		CardWidth:     DefaultCardWidth,
		CardHeight:    DefaultCardHeight,
		UnitGap:       DefaultUnitGap,
		SpouseGap:     DefaultSpouseGap,
		GenerationGap: DefaultGenerationGap,
		ComponentGap:  DefaultComponentGap,
		Margin:        DefaultMargin,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Orientation == "" {
		o.Orientation = d.Orientation
	}
	setDefault(&o.CardWidth, d.CardWidth)
	setDefault(&o.CardHeight, d.CardHeight)
	setDefault(&o.UnitGap, d.UnitGap)
	setDefault(&o.SpouseGap, d.SpouseGap)
	setDefault(&o.GenerationGap, d.GenerationGap)
	setDefault(&o.ComponentGap, d.ComponentGap)
	setDefault(&o.Margin, d.Margin)
	return o
}

func setDefault(v *float64, d float64) {
	if *v <= 0 {
		*v = d
	}
}

// spreadSize is the card extent along the spread axis.
func (o Options) spreadSize() float64 {
	if o.Orientation == Horizontal {
		return o.CardHeight
	}
	return o.CardWidth
}

// stackSize is the card extent along the stack axis.
func (o Options) stackSize() float64 {
	if o.Orientation == Horizontal {
		return o.CardWidth
	}
	return o.CardHeight
}

// toXY maps abstract (spread, stack) coordinates to chart coordinates.
func (o Options) toXY(spread, stack float64) Point {
	if o.Orientation == Horizontal {
		return Point{X: stack, Y: spread}
	}
	return Point{X: spread, Y: stack}
}

// fromXY maps chart coordinates back to (spread, stack).
func (o Options) fromXY(p Point) (spread, stack float64) {
	if o.Orientation == Horizontal {
		return p.Y, p.X
	}
	return p.X, p.Y
}
