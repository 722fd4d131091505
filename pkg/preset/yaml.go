package preset

import (
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/settings"
)

// FileVersion is the version written to exported preset files.
const FileVersion = 1

type yamlFile struct {
	Version int          `yaml:"version"`
	Presets []yamlPreset `yaml:"presets"`
}

type yamlPreset struct {
	ID        string               `yaml:"id,omitempty"`
	Name      string               `yaml:"name"`
	CreatedAt time.Time            `yaml:"created_at,omitempty"`
	Settings  settings.Persistable `yaml:"settings"`
}

// Export writes presets to w as YAML.
func Export(w io.Writer, presets []settings.SharedPreset) error {
	f := yamlFile{Version: FileVersion, Presets: make([]yamlPreset, 0, len(presets))}
	for _, sp := range presets {
		f.Presets = append(f.Presets, yamlPreset{
			ID:        sp.ID.String(),
			Name:      sp.Name,
			CreatedAt: sp.CreatedAt,
			Settings:  sp.Settings,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode presets")
	}
	return enc.Close()
}

// Import reads a YAML preset file. Settings missing from an entry take
// default values; an entry without an id gets a new one. The whole file is
// rejected if any entry is invalid.
func Import(r io.Reader) ([]settings.SharedPreset, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse preset file")
	}
	if f.Version != FileVersion {
		return nil, errors.New(errors.ErrCodeUnsupportedVersion, "preset file version %d is not supported", f.Version)
	}

	out := make([]settings.SharedPreset, 0, len(f.Presets))
	seen := make(map[string]bool, len(f.Presets))
	for i, yp := range f.Presets {
		sp := settings.SharedPreset{Name: yp.Name, Settings: yp.Settings, CreatedAt: yp.CreatedAt}
		if yp.ID != "" {
			id, err := uuid.Parse(yp.ID)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %d has a bad id", i+1)
			}
			sp.ID = id
		}
		sp = stamp(sp)
		if err := validate(sp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %d", i+1)
		}
		if seen[nameKey(sp.Name)] {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "preset %q appears twice", sp.Name)
		}
		seen[nameKey(sp.Name)] = true
		out = append(out, sp)
	}
	return out, nil
}

// UnmarshalYAML fills unspecified settings from the defaults.
func (p *yamlPreset) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlPreset
	raw := plain{Settings: settings.Defaults()}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = yamlPreset(raw)
	return nil
}
