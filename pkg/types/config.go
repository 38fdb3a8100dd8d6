package types

// Config is the user configuration read from .jibs-autolinker.json.
// The zero value is a valid, empty configuration.
type Config struct {
	// Modules overrides the directory links are created in
	Modules string `koanf:"modules" json:"modules,omitempty"`
	// NodeModules overrides the dependency directory that is scanned
	NodeModules string `koanf:"node_modules" json:"node_modules,omitempty"`
	// Include is an allow-list of entry names; empty means everything
	Include []string `koanf:"include" json:"include,omitempty"`
	// Exclude is a deny-list of entry names
	Exclude []string `koanf:"exclude" json:"exclude,omitempty"`
}

// Includes reports whether name passes the allow-list.
func (c *Config) Includes(name string) bool {
	if c == nil || len(c.Include) == 0 {
		return true
	}
	return contains(c.Include, name)
}

// Excludes reports whether name is on the deny-list.
func (c *Config) Excludes(name string) bool {
	if c == nil {
		return false
	}
	return contains(c.Exclude, name)
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
