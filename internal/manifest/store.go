package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads and normalizes the manifest at path. Empty or malformed
// documents are errors so the caller can skip them before any network
// activity.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty manifest %s", filepath.Base(path))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	m.raw = raw

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m.normalize(stem)
	return &m, nil
}

// Save writes the manifest back to path. Only the fields this
// pipeline owns are overlaid onto the original document: cache state,
// last_update, meta provenance, and per-artifact render stamps.
// Everything else, including fields this package has never heard of,
// is written back byte-for-byte.
func Save(path string, m *Manifest) error {
	doc := make(map[string]json.RawMessage, len(m.raw)+4)
	for k, v := range m.raw {
		doc[k] = v
	}

	cache := map[string]string{}
	if m.Cache.ReposRevision != "" {
		cache["repos_etag"] = m.Cache.ReposRevision
	}
	if m.Cache.LastChecked != "" {
		cache["last_checked"] = m.Cache.LastChecked
	}
	if len(cache) > 0 {
		if err := mergeObject(doc, "cache", cache); err != nil {
			return fmt.Errorf("encode cache state: %w", err)
		}
	}

	if m.LastUpdate != "" {
		raw, err := json.Marshal(m.LastUpdate)
		if err != nil {
			return fmt.Errorf("encode last_update: %w", err)
		}
		doc["last_update"] = raw
	}

	meta := map[string]string{}
	if m.Meta.LastProcessedBy != "" {
		meta["last_processed_by"] = m.Meta.LastProcessedBy
	}
	if m.Meta.LastProcessedAt != "" {
		meta["last_processed_at"] = m.Meta.LastProcessedAt
	}
	if len(meta) > 0 {
		if err := mergeObject(doc, "meta", meta); err != nil {
			return fmt.Errorf("encode meta: %w", err)
		}
	}

	if err := mergeArtifacts(doc, m.Artifacts); err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// mergeObject overlays values onto the named object in doc, keeping
// any keys the object already carries.
func mergeObject(doc map[string]json.RawMessage, key string, values map[string]string) error {
	obj := map[string]json.RawMessage{}
	if existing, ok := doc[key]; ok {
		if err := json.Unmarshal(existing, &obj); err != nil {
			// A non-object section is replaced outright.
			obj = map[string]json.RawMessage{}
		}
	}
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		obj[k] = raw
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	doc[key] = raw
	return nil
}

// mergeArtifacts overlays the render stamps onto the original
// artifact elements by position. When the original list is missing or
// its shape no longer matches (legacy manifests get an artifact
// injected at load), the normalized list is written in full.
func mergeArtifacts(doc map[string]json.RawMessage, artifacts []Artifact) error {
	var existing []map[string]json.RawMessage
	if raw, ok := doc["artifacts"]; ok {
		if err := json.Unmarshal(raw, &existing); err != nil {
			existing = nil
		}
	}

	if len(existing) != len(artifacts) {
		raw, err := json.Marshal(artifacts)
		if err != nil {
			return err
		}
		doc["artifacts"] = raw
		return nil
	}

	for i := range artifacts {
		if existing[i] == nil {
			existing[i] = map[string]json.RawMessage{}
		}
		if v := artifacts[i].LastRenderedAt; v != "" {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			existing[i]["last_rendered_at"] = raw
		}
		if v := artifacts[i].CanonicalURL; v != "" {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			existing[i]["canonical_url"] = raw
		}
	}

	raw, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	doc["artifacts"] = raw
	return nil
}

// List returns the manifest paths under dir in name order.
func List(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
