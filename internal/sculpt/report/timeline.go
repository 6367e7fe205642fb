package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/handvox/internal/sculpt/storage/sqlite"
)

// TimelineChart builds an interactive line chart of confidence and
// streak. Frames that emitted an action carry a labelled point in a
// third series; other frames leave a gap.
func TimelineChart(title string, records []sqlite.FrameRecord) (*charts.Line, error) {
	if len(records) == 0 {
		return nil, ErrNoFrames
	}

	x := make([]string, len(records))
	conf := make([]opts.LineData, len(records))
	streak := make([]opts.LineData, len(records))
	actions := make([]opts.LineData, len(records))
	nActions := 0
	for i, r := range records {
		x[i] = strconv.FormatUint(r.Seq, 10)
		conf[i] = opts.LineData{Value: r.Confidence}
		streak[i] = opts.LineData{Value: r.Streak}
		if r.Action.IsNone() {
			actions[i] = opts.LineData{Value: "-"}
			continue
		}
		nActions++
		actions[i] = opts.LineData{Value: r.Confidence, Name: r.Action.String()}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frames=%d actions=%d", len(records), nActions)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Confidence / streak", NameLocation: "middle", NameGap: 30}),
	)
	line.SetXAxis(x).
		AddSeries("confidence", conf).
		AddSeries("streak", streak).
		AddSeries("action", actions,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return line, nil
}

// WriteHTML renders the timeline chart as a standalone HTML page.
func WriteHTML(w io.Writer, title string, records []sqlite.FrameRecord) error {
	line, err := TimelineChart(title, records)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render timeline chart: %w", err)
	}
	return nil
}
