package config

import "github.com/footprint-tools/cmdtree/internal/domain"

func fileSettings() (map[string]string, error) {
	lines, err := Lines()
	if err != nil {
		return nil, err
	}
	return Parse(lines)
}

// Get returns the value of key from the rc file, falling back to its
// default. The result is false for keys that are neither set nor known.
func Get(key string) (string, bool) {
	if cfg, err := fileSettings(); err == nil {
		if v, ok := cfg[key]; ok {
			return v, true
		}
	}
	return domain.GetDefaultValue(key)
}

// GetAll returns the defaults overlaid with the rc file. A missing or
// malformed file yields the defaults alone.
func GetAll() (map[string]string, error) {
	all := make(map[string]string, len(domain.ConfigKeys))
	for _, key := range domain.ConfigKeys {
		all[key.Name] = key.Default
	}
	if cfg, err := fileSettings(); err == nil {
		for k, v := range cfg {
			all[k] = v
		}
	}
	return all, nil
}

// Set validates value and writes it to the rc file.
func Set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}
	return Update(func(lines []string) []string {
		lines, _ = Assign(lines, key, value)
		return lines
	})
}

// Unset removes key from the rc file so that its default applies again.
func Unset(key string) error {
	if !domain.IsValidConfigKey(key) {
		return &ErrUnknownKey{Key: key}
	}
	return Update(func(lines []string) []string {
		lines, _ = Remove(lines, key)
		return lines
	})
}

// Provider exposes the package functions as a domain.ConfigProvider.
type Provider struct{}

func (Provider) Get(key string) (string, bool)       { return Get(key) }
func (Provider) GetAll() (map[string]string, error) { return GetAll() }
func (Provider) Set(key, value string) error        { return Set(key, value) }
func (Provider) Unset(key string) error             { return Unset(key) }

var _ domain.ConfigProvider = Provider{}
