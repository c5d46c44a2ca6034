package config

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/folio/pkg/fileutil"
)

// ErrUnknownKey indicates a configuration key folio does not define.
var ErrUnknownKey = errors.New("unknown configuration key")

// durationKeys hold Go duration strings such as "500ms".
var durationKeys = []string{"build_timeout", "watch.debounce"}

// secretKeys are masked when configuration is displayed.
var secretKeys = []string{"publish.webhook_secret"}

// Keys returns every configuration key in sorted order, in dotted form.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

// IsKey reports whether key is a configuration key or a section of keys,
// such as "site".
func IsKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range Keys() {
		if k == key || strings.HasPrefix(k, key+".") {
			return true
		}
	}
	return false
}

// IsSecret reports whether the value of key should not be displayed.
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, strings.ToLower(key))
}

// Mask replaces a secret value for display. Empty values stay empty.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}

// SetValue sets key to raw in the YAML configuration file at path and
// returns the value as written. raw is converted to the key's type. The
// file's other values, layout, and comments are kept. The updated file must
// still be a valid configuration, otherwise nothing is written.
func SetValue(path, key, raw string) (any, error) {
	key = strings.ToLower(key)
	if !slices.Contains(Keys(), key) {
		return nil, errors.Wrapf(ErrUnknownKey, "%q", key)
	}

	value, node, err := scalar(key, raw)
	if err != nil {
		return nil, &FieldError{Field: key, Value: raw, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	if err := setNode(&doc, strings.Split(key, "."), node); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, "encoding config file")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding config file")
	}

	if _, err := Parse(buf.Bytes(), filepath.Dir(path)); err != nil {
		return nil, err
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fileutil.AtomicWriteFile(path, buf.Bytes(), perm); err != nil {
		return nil, errors.Wrap(err, "writing config file")
	}
	return value, nil
}

// scalar converts raw to the type of key's default and returns it with a
// YAML node carrying the matching tag.
func scalar(key, raw string) (any, *yaml.Node, error) {
	v := viper.New()
	setDefaults(v)

	node := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.Get(key).(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, errors.Newf("expected true or false, got %q", raw)
		}
		node.Tag, node.Value = "!!bool", strconv.FormatBool(b)
		return b, node, nil
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, errors.Newf("expected an integer, got %q", raw)
		}
		node.Tag, node.Value = "!!int", strconv.Itoa(n)
		return n, node, nil
	case float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, errors.Newf("expected a number, got %q", raw)
		}
		node.Tag, node.Value = "!!float", strconv.FormatFloat(f, 'g', -1, 64)
		return f, node, nil
	}

	if slices.Contains(durationKeys, key) {
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, nil, errors.Newf("expected a duration such as 500ms or 2m, got %q", raw)
		}
	}
	node.Tag, node.Value = "!!str", raw
	return raw, node, nil
}

// setNode stores value under the dotted path in a YAML document, creating
// mappings as needed. Comments on a replaced value are kept.
func setNode(doc *yaml.Node, path []string, value *yaml.Node) error {
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	node := doc.Content[0]
	for i, name := range path {
		if node.Kind != yaml.MappingNode {
			return errors.Newf("config value %q is not a section", strings.Join(path[:i], "."))
		}

		idx := -1
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == name {
				idx = j + 1
				break
			}
		}

		if i == len(path)-1 {
			if idx < 0 {
				node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, value)
				return nil
			}
			old := node.Content[idx]
			value.HeadComment, value.LineComment, value.FootComment = old.HeadComment, old.LineComment, old.FootComment
			node.Content[idx] = value
			return nil
		}

		if idx < 0 {
			child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, child)
			node = child
			continue
		}
		node = node.Content[idx]
	}
	return nil
}
