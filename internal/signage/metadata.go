package signage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/radiusdt/nexus-backend/internal/errortypes"
	"github.com/radiusdt/nexus-backend/internal/metrics"
	"github.com/radiusdt/nexus-backend/internal/models"
	"github.com/radiusdt/nexus-backend/internal/storage"
	"go.uber.org/zap"
)

// Precedence decides which side wins when a custom field shares its name
// with a canonical field.
type Precedence string

const (
	// PrecedenceCustom lets custom fields override canonical ones.
	PrecedenceCustom Precedence = "custom"
	// PrecedenceCanonical keeps canonical values on collision.
	PrecedenceCanonical Precedence = "canonical"
)

// NumericMode decides what a numeric canonical field becomes when its
// column cannot be read as a number.
type NumericMode string

const (
	// NumericModeNull emits JSON null.
	NumericModeNull NumericMode = "null"
	// NumericModeZero emits 0.
	NumericModeZero NumericMode = "zero"
)

type canonicalField struct {
	name    string
	numeric bool
}

var operationalMetadataFields = []canonicalField{
	{"ambient_audio_vol", true},
	{"ambient_url", false},
	{"ambient_uuid", false},
	{"campaign_refresh_period", false},
	{"device_clock_offset_tolerance_millis", true},
	{"device_uuid", false},
	{"feed_entries_to_upload_per_cycle", false},
	{"lemma_operational_config", false},
	{"panel_id", false},
	{"priority_campaign_interval", false},
	{"programmatic_probability", true},
	{"programmatic_probability_hour_wise", true},
	{"programmatic_probability_slot_wise", true},
	{"screen_uuid", false},
	{"server_time_millis", true},
	{"show_aruco_overlay", false},
	{"spot_uuid", false},
	{"timezone_identifier", false},
}

var screenConfigFields = []canonicalField{
	{"animation_config", false},
	{"screen_config", false},
}

// MetadataService serves the flattened operational metadata and screen
// configuration records.
type MetadataService struct {
	repo    storage.CreativeRepo
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMetadataService constructs a MetadataService.
func NewMetadataService(repo storage.CreativeRepo, opts Options, logger *zap.Logger, m *metrics.Metrics) *MetadataService {
	return &MetadataService{
		repo:    repo,
		opts:    opts,
		logger:  logger.Named("metadata"),
		metrics: m,
	}
}

// recordSource describes one configuration table.
type recordSource struct {
	name     string
	fields   []canonicalField
	fetch    func(context.Context) (models.Record, error)
	notFound string
	failed   string
}

// OperationalMetadata returns the latest operational metadata record.
func (s *MetadataService) OperationalMetadata(ctx context.Context) (map[string]any, error) {
	return s.transform(ctx, recordSource{
		name:     "operational_metadata",
		fields:   operationalMetadataFields,
		fetch:    s.repo.LatestOperationalMetadata,
		notFound: "No operational metadata found",
		failed:   "Failed to fetch operational metadata",
	})
}

// ScreenConfig returns the latest screen configuration record.
func (s *MetadataService) ScreenConfig(ctx context.Context) (map[string]any, error) {
	return s.transform(ctx, recordSource{
		name:     "screen_config",
		fields:   screenConfigFields,
		fetch:    s.repo.LatestScreenConfig,
		notFound: "No screen configuration found",
		failed:   "Failed to fetch screen config",
	})
}

func (s *MetadataService) transform(ctx context.Context, src recordSource) (map[string]any, error) {
	ctx, cancel := s.opts.gatewayContext(ctx)
	defer cancel()

	rec, err := src.fetch(ctx)
	if err != nil {
		s.metrics.RecordGatewayError("latest_" + src.name)
		return nil, &errortypes.Upstream{Message: src.failed, Err: err}
	}
	if rec == nil {
		return nil, &errortypes.NotFound{Message: src.notFound}
	}

	custom := rec.CustomFields()
	if custom.Kind == models.CustomFieldsInvalid {
		s.metrics.RecordCustomFieldParseFailure(src.name)
		s.logger.Warn("ignoring unreadable custom fields",
			zap.String("record", src.name),
			zap.Error(custom.Err),
		)
	}

	return Reconcile(canonicalValues(rec, src.fields, s.opts.NumericMode), custom.Fields, s.opts.Precedence), nil
}

// canonicalValues picks the canonical columns out of rec. Absent text
// columns are omitted; numeric columns are always present.
func canonicalValues(rec models.Record, fields []canonicalField, mode NumericMode) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, present := rec[f.name]
		if f.numeric {
			out[f.name] = coerceNumber(v, present, mode)
			continue
		}
		if present {
			out[f.name] = normalizeText(v)
		}
	}
	return out
}

// Reconcile flattens canonical and custom fields into one object. With
// PrecedenceCanonical a canonical key is never replaced; any other value
// behaves as PrecedenceCustom.
func Reconcile(canonical, custom map[string]any, p Precedence) map[string]any {
	out := make(map[string]any, len(canonical)+len(custom))
	for k, v := range canonical {
		out[k] = v
	}
	for k, v := range custom {
		if _, taken := canonical[k]; taken && p == PrecedenceCanonical {
			continue
		}
		out[k] = v
	}
	return out
}

func coerceNumber(v any, present bool, mode NumericMode) any {
	if f, ok := toNumber(v, present); ok {
		return f
	}
	if mode == NumericModeZero {
		return 0.0
	}
	return nil
}

// toNumber converts a column value to a finite float64. A present null
// column and a blank string both read as 0; an absent column, a non-numeric
// string or a structured value is not a number.
func toNumber(v any, present bool) (float64, bool) {
	if !present {
		return 0, false
	}

	var f float64
	switch val := v.(type) {
	case nil:
		return 0, true
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		return parseNumber(val)
	case []byte:
		return parseNumber(string(val))
	default:
		return 0, false
	}

	if !isFinite(f) {
		return 0, false
	}
	return f, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

// normalizeText turns raw byte columns into strings so they encode as text
// rather than base64.
func normalizeText(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
