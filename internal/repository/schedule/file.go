package schedule

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/activity-alarms/internal/config"
	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
	pb "github.com/oshokin/activity-alarms/internal/pb/v1"
)

// FileRepository persists alarms to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) so the file
// matches the messages served over gRPC.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu serialises read-modify-write cycles on the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// List implements Repository.
func (r *FileRepository) List(_ context.Context) ([]*domain.Scheduled, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Save implements Repository.
func (r *FileRepository) Save(_ context.Context, alarm *domain.Scheduled) error {
	if err := alarm.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	alarms, err := r.load()
	if err != nil {
		return err
	}

	alarms = slices.DeleteFunc(alarms, func(a *domain.Scheduled) bool {
		return a.ID == alarm.ID
	})

	return r.store(append(alarms, alarm.Clone()))
}

// Delete implements Repository.
func (r *FileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alarms, err := r.load()
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(alarms, func(a *domain.Scheduled) bool {
		return a.ID == id
	})

	return r.store(kept)
}

// Close implements Repository.
func (r *FileRepository) Close() error {
	return nil
}

// load reads all alarms; a missing file is an empty set.
func (r *FileRepository) load() ([]*domain.Scheduled, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var list structpb.ListValue
	if err = protojson.Unmarshal(contents, &list); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	alarms, err := pb.AlarmsFromList(&list)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	sortByTime(alarms)

	return alarms, nil
}

// store writes all alarms.
func (r *FileRepository) store(alarms []*domain.Scheduled) error {
	sortByTime(alarms)

	list, err := pb.AlarmsToList(alarms)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = replaceFile(r.path, data); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// replaceFile writes data to a temporary file next to path and renames it
// over path, so readers never see a half-written state file.
func replaceFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return err
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Chmod(tmp.Name(), config.DefaultFilePermissions); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// sortByTime orders alarms by fire time, then id.
func sortByTime(alarms []*domain.Scheduled) {
	slices.SortFunc(alarms, func(a, b *domain.Scheduled) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}
