package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// Keywords maps role names to their technical vocabulary.
type Keywords struct {
	Fallback []string            `yaml:"fallback"`
	Roles    map[string][]string `yaml:"roles"`
}

// DefaultKeywords returns the built-in role table.
func DefaultKeywords() *Keywords {
	kw, err := ParseKeywords(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("embedded keywords table is invalid: %v", err))
	}
	return kw
}

// LoadKeywords reads a role table from path. An empty path yields the built-in table.
func LoadKeywords(path string) (*Keywords, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultKeywords(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}

	kw, err := ParseKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("parse keywords file %q: %w", path, err)
	}

	return kw, nil
}

// ParseKeywords decodes a YAML role table and normalizes keywords to lower case.
func ParseKeywords(data []byte) (*Keywords, error) {
	var kw Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return nil, err
	}

	kw.Fallback = normalize(kw.Fallback)
	if len(kw.Fallback) == 0 {
		return nil, errors.New("fallback keywords must not be empty")
	}

	for role, words := range kw.Roles {
		kw.Roles[role] = normalize(words)
	}

	return &kw, nil
}

// For returns the keyword set for role, or the fallback set when the role is unknown.
func (k *Keywords) For(role string) []string {
	if words, ok := k.Roles[role]; ok && len(words) > 0 {
		return words
	}
	return k.Fallback
}

// RoleNames lists the known roles in alphabetical order.
func (k *Keywords) RoleNames() []string {
	names := make([]string, 0, len(k.Roles))
	for role := range k.Roles {
		names = append(names, role)
	}
	sort.Strings(names)
	return names
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
