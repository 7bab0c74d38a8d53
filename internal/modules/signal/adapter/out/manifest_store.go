package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"worktrack/internal/modules/signal/domain"
	signalout "worktrack/internal/modules/signal/port/out"
)

// FileManifestStore reads the list of signal sources from a JSON or YAML
// file, chosen by extension. Binary paths may use $VAR and a leading ~/;
// relative paths resolve against the manifest's directory.
type FileManifestStore struct {
	path string
}

func NewFileManifestStore(path string) signalout.ManifestStore {
	return &FileManifestStore{path: path}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []domain.Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read signal manifests: %w", err)
	}
	manifests, err := decodeManifests(filepath.Ext(s.path), raw)
	if err != nil {
		return nil, fmt.Errorf("decode signal manifests %s: %w", s.path, err)
	}
	for i := range manifests {
		manifests[i].Binary = s.resolveBinary(manifests[i].Binary)
	}
	return manifests, nil
}

func decodeManifests(ext string, raw []byte) ([]domain.Manifest, error) {
	manifests := []domain.Manifest{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if len(bytes.TrimSpace(raw)) == 0 {
			return manifests, nil
		}
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&manifests); err != nil {
			return nil, err
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&manifests); err != nil {
			return nil, err
		}
	}
	return manifests, nil
}

func (s *FileManifestStore) resolveBinary(binary string) string {
	if binary == "" {
		return ""
	}
	binary = os.ExpandEnv(binary)
	if rest, ok := strings.CutPrefix(binary, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			binary = filepath.Join(home, rest)
		}
	}
	if !filepath.IsAbs(binary) {
		binary = filepath.Join(filepath.Dir(s.path), binary)
	}
	return filepath.Clean(binary)
}
