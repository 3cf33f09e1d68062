package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// extendsKey names the profile a file starts from.
const extendsKey = "extends"

// LoadFile reads a YAML, JSON or TOML profile file. Keys present in the file
// override the profile named by "extends" (default: the registry default);
// lists such as taxonomy or curve replace the parent's list entirely.
// A file without a name is named after the file.
func LoadFile(path string, registry *Registry) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile file %q: %w", path, err)
	}

	parent, err := registry.Get(v.GetString(extendsKey))
	if err != nil {
		return nil, fmt.Errorf("profile file %q: %w", path, err)
	}

	p := parent.Clone()
	settings := v.AllSettings()
	delete(settings, extendsKey)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		TagName:          "mapstructure",
		ZeroFields:       true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating profile decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding profile file %q: %w", path, err)
	}

	if !v.IsSet("name") {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if !v.IsSet("description") {
		p.Description = fmt.Sprintf("Custom profile based on %s", parent.Name)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
