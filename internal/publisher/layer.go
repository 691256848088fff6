package publisher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/geo_publish.git/internal/geoserver"
)

// Outcome итог обработки одного shapefile
type Outcome int

const (
	// OutcomePublished слой опубликован в этом запуске
	OutcomePublished Outcome = iota
	// OutcomeLayerExists слой уже был опубликован
	OutcomeLayerExists
	// OutcomeFeatureTypeExists feature type есть в хранилище, но слоя нет
	OutcomeFeatureTypeExists
	// OutcomeFailed публикация не удалась
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeLayerExists:
		return "layer_exists"
	case OutcomeFeatureTypeExists:
		return "feature_type_exists"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type layerResult struct {
	outcome    Outcome
	previewURL string
	styled     bool
	styleError bool
}

// publishOne обрабатывает один shapefile. Уже опубликованные слои и
// существующие feature type не публикуются повторно и не получают стиль,
// но их bbox пересчитывается.
func (p *Publisher) publishOne(ctx context.Context, logger *zap.Logger, target Target, layer string) (layerResult, error) {
	ws, store := target.Workspace, target.Datastore

	layerExists, err := p.gs.LayerExists(ctx, ws, layer)
	if err != nil {
		return layerResult{}, err
	}
	if layerExists {
		p.printf("Resource named '%s' already exists in namespace: '%s'\n", layer, ws)
		return layerResult{
			outcome:    OutcomeLayerExists,
			previewURL: p.refresh(ctx, logger, ws, store, layer),
		}, nil
	}

	ftExists, err := p.gs.FeatureTypeExists(ctx, ws, store, layer)
	if err != nil {
		return layerResult{}, err
	}
	if ftExists {
		p.printf("Layer '%s' already exists in datastore '%s'. Skipping publish.\n", layer, store)
		return layerResult{
			outcome:    OutcomeFeatureTypeExists,
			previewURL: p.refresh(ctx, logger, ws, store, layer),
		}, nil
	}

	// SRS не передается: GeoServer определит CRS по .prj
	created, err := p.gs.PublishFeatureType(ctx, ws, store, layer, layer, "")
	if err != nil {
		return layerResult{}, err
	}
	if !created {
		p.printf("Failed to publish layer '%s'.\n", layer)
		return layerResult{outcome: OutcomeFailed}, nil
	}
	p.printf("Layer '%s' published successfully.\n", layer)

	result := layerResult{
		outcome:    OutcomePublished,
		previewURL: p.refresh(ctx, logger, ws, store, layer),
	}

	if shouldApplyStyle(target.StyleName) {
		styled, err := p.gs.SetDefaultStyle(ctx, ws, layer, target.StyleName)
		if err != nil {
			logger.Warn("Error applying style", zap.String("style", target.StyleName), zap.Error(err))
		}
		if styled {
			p.printf("Style '%s' applied to '%s'.\n", target.StyleName, layer)
		} else {
			p.printf("Failed to apply style '%s' to '%s'.\n", target.StyleName, layer)
		}
		result.styled = styled
		result.styleError = !styled
	}

	return result, nil
}

// refresh пересчитывает bbox и печатает ссылку предпросмотра, если bbox известен.
// Ошибки здесь не прерывают обработку слоя.
func (p *Publisher) refresh(ctx context.Context, logger *zap.Logger, ws, store, layer string) string {
	ok, err := p.gs.RecalcFeatureTypeBBox(ctx, ws, store, layer, geoserver.RecalcAll)
	if err != nil || !ok {
		logger.Warn("BBox recalculation failed", zap.Bool("accepted", ok), zap.Error(err))
	}

	bbox, found, err := p.gs.FeatureTypeBBox(ctx, ws, store, layer)
	if err != nil {
		logger.Warn("BBox lookup failed", zap.Error(err))
		return ""
	}
	if !found {
		logger.Debug("No bbox available for preview")
		return ""
	}

	var preview string
	if p.opts.DetectSRS {
		preview = p.gs.PreviewURLWithSRS(ctx, ws, store, layer, bbox)
	} else {
		preview = p.gs.PreviewURL(ws, layer, bbox)
	}
	p.printf("OpenLayers preview: %s\n", preview)
	return preview
}
