package catalog

import (
	"gopkg.in/yaml.v3"
)

// publiccode holds the few manifest keys the issue body needs.
type publiccode struct {
	Name        string `yaml:"name"`
	Description map[string]struct {
		LocalisedName string `yaml:"localisedName"`
	} `yaml:"description"`
}

// SoftwareName returns the software name declared in a publiccode.yml
// document, or "" when the document cannot be parsed.
func SoftwareName(publiccodeYml string) string {
	if publiccodeYml == "" {
		return ""
	}

	var pc publiccode
	if err := yaml.Unmarshal([]byte(publiccodeYml), &pc); err != nil {
		return ""
	}
	if pc.Name != "" {
		return pc.Name
	}
	for _, d := range pc.Description {
		if d.LocalisedName != "" {
			return d.LocalisedName
		}
	}
	return ""
}
