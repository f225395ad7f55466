package chart

import (
	"bytes"
	"errors"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"portfolio-dashboard/internal/format"
)

// ErrNoData signals a chart with nothing drawable; callers skip the target.
var ErrNoData = errors.New("chart: no drawable data")

// RenderOptions size the produced images.
type RenderOptions struct {
	Width  int
	Height int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	return o
}

// RenderLine draws the datasets as a PNG time-series chart. Nil and
// non-finite values are omitted from the drawn points; datasets with nothing
// drawable are dropped.
func RenderLine(title, yAxisName string, datasets []LineDataset, opts RenderOptions) ([]byte, error) {
	opts = opts.withDefaults()

	seriesList := make([]gochart.Series, 0, len(datasets))
	for _, ds := range datasets {
		xs, ys := drawablePoints(ds.Times, ds.Values)
		if len(xs) == 0 {
			continue
		}
		// go-chart cannot size an axis range from a single point.
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
		}

		style := gochart.Style{
			StrokeColor: ds.Color,
			StrokeWidth: 2.0,
			FillColor:   drawing.ColorTransparent,
		}
		if ds.Dashed {
			style.StrokeDashArray = []float64{5.0, 5.0}
		}

		seriesList = append(seriesList, gochart.TimeSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	if len(seriesList) == 0 {
		return nil, ErrNoData
	}

	graph := gochart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: yAxisName,
			ValueFormatter: func(v interface{}) string {
				return gochart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: seriesList,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	return renderPNG(&graph)
}

// RenderBars draws one bar per point as a PNG bar chart.
func RenderBars(title string, points []BarPoint, opts RenderOptions) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()

	values := make([]gochart.Value, len(points))
	for i, p := range points {
		values[i] = gochart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: gochart.Style{FillColor: p.Color, StrokeColor: p.Color},
		}
	}

	graph := gochart.BarChart{
		Title:    title,
		Width:    opts.Width,
		Height:   opts.Height,
		BarWidth: 60,
		Bars:     values,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAllocation draws the allocation breakdown as a PNG donut chart with
// percentage-of-total labels.
func RenderAllocation(title string, slices []AllocationSlice, opts RenderOptions) ([]byte, error) {
	if len(slices) == 0 {
		return nil, ErrNoData
	}
	opts = opts.withDefaults()

	var total float64
	for _, s := range slices {
		total += s.Amount
	}

	values := make([]gochart.Value, 0, len(slices))
	for i, s := range slices {
		if s.Amount <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: s.Label + " " + format.ShareOfTotal(s.Amount, total),
			Value: s.Amount,
			Style: gochart.Style{FillColor: PaletteColor(i)},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	graph := gochart.DonutChart{
		Title:  title,
		Width:  opts.Height,
		Height: opts.Height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPNG(graph *gochart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawablePoints(times []time.Time, values []*float64) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if i >= len(times) || v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, *v)
	}
	return xs, ys
}
