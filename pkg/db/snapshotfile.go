package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/timetabler/pkg/core/model"
)

// LoadSnapshotFile reads an entity catalogue from a JSON or YAML file
func LoadSnapshotFile(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	return DecodeSnapshot(raw)
}

// DecodeSnapshot converts a generic map, as produced by a JSON or YAML decoder, into a snapshot.
// Weekdays may be given as numbers (0 is Sunday) or as English or Spanish names.
func DecodeSnapshot(raw map[string]any) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       weekdayHook,
		WeaklyTypedInput: true,
		Result:           &snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func weekdayHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Weekday(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	return model.ParseWeekday(data.(string))
}
