package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/keywords"
)

// requiredKeys are the snapshot answers a file must provide. free_text is optional.
var requiredKeys = []string{
	"mood", "stress", "sleep_quality", "sleep_hours", "energy", "motivation",
	"concentration", "appetite", "social", "workload", "symptom_duration_days",
	"self_harm_ideation",
}

// wholeNumberKeys hold counts; JSON decodes them as float64, and the decoder
// would truncate a fraction.
var wholeNumberKeys = []string{"stress", "symptom_duration_days"}

// checkAnswerTypes rejects answers the decoder would otherwise convert.
func checkAnswerTypes(k *koanf.Koanf) error {
	for _, key := range wholeNumberKeys {
		switch v := k.Get(key).(type) {
		case int, int64, uint64:
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return &assessment.InputError{Field: key, Value: v, Reason: "must be a whole number"}
			}
		default:
			return &assessment.InputError{Field: key, Value: v, Reason: "must be a number"}
		}
	}
	if _, ok := k.Get("self_harm_ideation").(bool); !ok {
		return &assessment.InputError{Field: "self_harm_ideation", Value: k.Get("self_harm_ideation"), Reason: "must be true or false"}
	}
	return nil
}

// strictConf decodes into out without weak conversions such as 0 to false
// or "7" to 7.
func strictConf(out any) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			TagName:          "koanf",
			WeaklyTypedInput: false,
		},
	}
}

// parserFor picks the koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, usageError("%s: unsupported extension, want .yaml, .yml or .json", path)
	}
}

func loadFile(path string) (*koanf.Koanf, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}
	return k, nil
}

// LoadSnapshot reads a snapshot from a YAML or JSON file. A missing answer
// or one of the wrong type is reported as an *assessment.InputError; domain
// checks are left to the evaluator.
func LoadSnapshot(path string) (assessment.Snapshot, error) {
	k, err := loadFile(path)
	if err != nil {
		return assessment.Snapshot{}, err
	}

	for _, key := range requiredKeys {
		if !k.Exists(key) {
			return assessment.Snapshot{}, &assessment.InputError{Field: key, Reason: "is required"}
		}
	}

	if err := checkAnswerTypes(k); err != nil {
		return assessment.Snapshot{}, err
	}

	var s assessment.Snapshot
	if err := k.UnmarshalWithConf("", &s, strictConf(&s)); err != nil {
		return assessment.Snapshot{}, fmt.Errorf("%w: %s: %w", assessment.ErrInvalidInput, path, err)
	}
	return s, nil
}

// LoadTriggers reads the keyword_triggers list from a YAML or JSON file.
func LoadTriggers(path string) ([]keywords.Trigger, error) {
	k, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if !k.Exists("keyword_triggers") {
		return nil, fmt.Errorf("%w: %s: missing keyword_triggers", ErrUnreadableFile, path)
	}

	var triggers []keywords.Trigger
	if err := k.UnmarshalWithConf("keyword_triggers", &triggers, strictConf(&triggers)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}
	return triggers, nil
}
