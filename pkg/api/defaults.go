package api

const (
	DefaultTemplateName = "Untitled template"
	DefaultCategory     = "default"
	// AutoPageNamePrefix marks generated page names ("Page 3").
	AutoPageNamePrefix = "Page "
	DefaultDataSource  = "{{sensorData}}"
)

// DefaultElementSize is used for new elements and to repair degenerate sizes.
var DefaultElementSize = Size{Width: 100, Height: 50}

func DefaultPageSettings() PageSettings {
	return PageSettings{
		Size:            SizeA4,
		Orientation:     Portrait,
		Margins:         Spacing{Top: 20, Right: 20, Bottom: 20, Left: 20},
		BackgroundColor: "#ffffff",
		ShowMargins:     false,
	}
}

func DefaultGlobalStyles() GlobalStyles {
	return GlobalStyles{
		FontFamily:      "Arial",
		FontSize:        12,
		Color:           "#000000",
		BackgroundColor: "#ffffff",
		LineHeight:      1.4,
	}
}

func DefaultTableContent() TableContent {
	return TableContent{
		DataSource:  DefaultDataSource,
		Columns:     []TableColumn{},
		ShowHeader:  Bool(true),
		HeaderStyle: &ElementStyles{},
		RowStyle:    &ElementStyles{},
		BorderStyle: "grid",
		FontSize:    12,
		FontFamily:  "Arial",
		MaxRows:     50,
	}
}

func DefaultChartContent() ChartContent {
	return ChartContent{
		ChartType:      "line",
		DataSource:     DefaultDataSource,
		XAxis:          "timestamp",
		YAxis:          "temperature",
		Width:          "100%",
		Height:         "200px",
		Colors:         []string{"#4bc0c0"},
		ShowLegend:     Bool(true),
		ShowGrid:       Bool(true),
		ShowLabels:     Bool(true),
		LegendPosition: "top",
	}
}
