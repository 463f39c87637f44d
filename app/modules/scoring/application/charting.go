package scoringservice

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette is the colour scheme of rendered charts.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	GridColor  drawing.Color
}

// DefaultPalette is a dark fairway scheme.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("10231a"),
	TextColor:  drawing.ColorFromHex("e8e4d8"),
	GridColor:  drawing.ColorFromHex("2c4a3a"),
}

// RenderRunningTotals draws a PNG line chart of the game after each hole in
// play order. Teams are plotted by running total when the game has any,
// otherwise each player's cumulative points.
func (s *ScoringService) RenderRunningTotals(ctx context.Context, sb *scoringdomain.Scoreboard) ([]byte, error) {
	if sb == nil || len(sb.Holes) == 0 {
		return renderNoDataPlaceholder(DefaultPalette, "No holes scored yet")
	}

	series := runningSeries(sb)
	png, err := renderLineChart(DefaultPalette, sb.GameName, series)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to render running totals",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", sb.GameID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return png, nil
}

func runningSeries(sb *scoringdomain.Scoreboard) []chart.Series {
	xs := make([]float64, len(sb.Holes))
	for i, h := range sb.Holes {
		xs[i] = float64(i + 1)
		if h.Seq > 0 {
			xs[i] = float64(h.Seq)
		}
	}

	var out []chart.Series
	if len(sb.Teams) > 0 && len(sb.Holes[0].Teams) > 0 {
		for i, team := range sb.Teams {
			ys := make([]float64, len(sb.Holes))
			for j, h := range sb.Holes {
				if tr, ok := h.Team(team.TeamID); ok {
					ys[j] = tr.RunningTotal
				} else if j > 0 {
					ys[j] = ys[j-1]
				}
			}
			out = append(out, lineSeries(team.TeamID, i, xs, ys))
		}
		return out
	}

	for i, p := range sb.Players {
		name := p.PlayerName
		if name == "" {
			name = p.PlayerID
		}
		ys := make([]float64, len(sb.Holes))
		var total float64
		for j, h := range sb.Holes {
			if pr, ok := h.Player(p.PlayerID); ok {
				total += pr.Points
			}
			ys[j] = total
		}
		out = append(out, lineSeries(name, i, xs, ys))
	}
	return out
}

func lineSeries(name string, idx int, xs, ys []float64) chart.ContinuousSeries {
	color := chart.GetDefaultColor(idx)
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotWidth:    3,
			DotColor:    color,
		},
	}
}

func renderLineChart(palette ChartPalette, title string, series []chart.Series) ([]byte, error) {
	if len(series) == 0 {
		return renderNoDataPlaceholder(palette, "No players in this game")
	}

	xr, yr := seriesBounds(series)
	graph := chart.Chart{
		Title:  title,
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Right: 20, Bottom: 20, Left: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:  "Hole",
			Range: xr,
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Points",
			Range: yr,
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: palette.GridColor,
				StrokeWidth: 1,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// seriesBounds returns explicit axis ranges. A single hole or a flat line
// would otherwise give the renderer a zero-width range, which it rejects.
func seriesBounds(series []chart.Series) (x, y *chart.ContinuousRange) {
	x = &chart.ContinuousRange{Min: math.Inf(1), Max: math.Inf(-1)}
	y = &chart.ContinuousRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, s := range series {
		cs, ok := s.(chart.ContinuousSeries)
		if !ok {
			continue
		}
		for i := range cs.XValues {
			x.Min, x.Max = math.Min(x.Min, cs.XValues[i]), math.Max(x.Max, cs.XValues[i])
			y.Min, y.Max = math.Min(y.Min, cs.YValues[i]), math.Max(y.Max, cs.YValues[i])
		}
	}
	for _, r := range []*chart.ContinuousRange{x, y} {
		if math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			r.Min, r.Max = 0, 1
		}
		if r.Min == r.Max {
			r.Min, r.Max = r.Min-1, r.Max+1
		}
	}
	return x, y
}

func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
