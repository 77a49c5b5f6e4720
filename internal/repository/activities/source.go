package activities

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/activity-alarms/internal/config"
	"github.com/oshokin/activity-alarms/internal/domain/activity"
	"github.com/oshokin/activity-alarms/internal/logger"
)

// Source yields the current snapshot of activities in display order.
type Source interface {
	Snapshot(ctx context.Context) ([]*activity.Activity, error)
}

// document is the on-disk layout of the activities file.
type document struct {
	Activities []*activity.Activity `yaml:"activities"`
}

var (
	// ErrDuplicateID is returned when two activities share an id.
	ErrDuplicateID = errors.New("duplicate activity id")
	// ErrMissingID is returned when an activity has no id.
	ErrMissingID = errors.New("activity id is required")
)

// FileSource reads activities from a YAML file.
type FileSource struct {
	// path is the activities file location.
	path string
}

// NewFileSource creates a source backed by the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path: filepath.Clean(path),
	}
}

// Snapshot implements Source.
func (s *FileSource) Snapshot(_ context.Context) ([]*activity.Activity, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read activities: %w", err)
	}

	return Decode(contents)
}

// Watch calls onChange with the first snapshot and again whenever the file
// content changes, until ctx is canceled. Changes are picked up from
// filesystem events on the parent directory, so saves that rename a temporary
// file over the activities file are followed too. A burst of events is
// reloaded once delay after the last one. Read and decode failures are logged
// and the previous snapshot stays in effect.
func (s *FileSource) Watch(ctx context.Context, delay time.Duration, onChange func([]*activity.Activity)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create activities watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(s.path)
	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var lastSum []byte

	check := func() {
		contents, err := os.ReadFile(s.path)
		if err != nil {
			logger.WarnKV(ctx, "Unable to read activities", "path", s.path, "error", err)

			return
		}

		// Editors often write identical bytes or emit several events per save.
		sum := sha256.Sum256(contents)
		if lastSum != nil && bytes.Equal(lastSum, sum[:]) {
			return
		}

		list, err := Decode(contents)
		if err != nil {
			logger.WarnKV(ctx, "Unable to decode activities", "path", s.path, "error", err)

			return
		}

		lastSum = sum[:]

		logger.InfoKV(ctx, "Activities loaded", "path", s.path, "count", len(list))
		onChange(list)
	}

	check()

	settle := time.NewTimer(delay)
	settle.Stop()

	defer settle.Stop()

	name := filepath.Base(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != name || event.Op == fsnotify.Chmod {
				continue
			}

			logger.DebugKV(ctx, "Activities file event", "path", event.Name, "op", event.Op.String())
			settle.Reset(delay)
		case <-settle.C:
			check()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Activities watcher failed", "path", s.path, "error", err)
		}
	}
}

// Decode parses an activities document and checks ids are present and unique.
func Decode(contents []byte) ([]*activity.Activity, error) {
	var doc document
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal activities: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Activities))

	for i, a := range doc.Activities {
		if a == nil || a.ID == "" {
			return nil, fmt.Errorf("activity %d: %w", i, ErrMissingID)
		}

		if _, ok := seen[a.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
		}

		seen[a.ID] = struct{}{}
	}

	return doc.Activities, nil
}

// Encode renders activities in the file layout read by Decode.
func Encode(list []*activity.Activity) ([]byte, error) {
	data, err := yaml.Marshal(document{Activities: list})
	if err != nil {
		return nil, fmt.Errorf("marshal activities: %w", err)
	}

	return data, nil
}

// WriteFile stores activities at path in the layout read by FileSource.
func WriteFile(path string, list []*activity.Activity) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}

	if err = os.WriteFile(filepath.Clean(path), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write activities: %w", err)
	}

	return nil
}
