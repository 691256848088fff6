package publisher

// LayerReport итог по одному слою
type LayerReport struct {
	Name       string
	Outcome    Outcome
	PreviewURL string
	Styled     bool
}

// Report сводка запуска публикации
type Report struct {
	// Folder абсолютный каталог, из которого публиковались shapefile
	Folder string

	Processed   int
	Published   int
	Skipped     int
	Failed      int
	StyleFailed int

	Layers []LayerReport
}

// HasFailures сообщает, не удалось ли опубликовать хотя бы один shapefile
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

func (r *Report) add(name string, res layerResult) {
	switch res.outcome {
	case OutcomePublished:
		r.Published++
	case OutcomeLayerExists, OutcomeFeatureTypeExists:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	if res.styleError {
		r.StyleFailed++
	}
	r.Layers = append(r.Layers, LayerReport{
		Name:       name,
		Outcome:    res.outcome,
		PreviewURL: res.previewURL,
		Styled:     res.styled,
	})
}
