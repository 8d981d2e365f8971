/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package yamlx provides helpers for inspecting YAML documents
package yamlx

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// KeyLookup is a lookup of keys available in the parsed yaml
type KeyLookup map[string]interface{}

// GetKeyList parses a YAML document and returns its fully-qualified key
// names, joined with dots (e.g., "stores.sessions.ttl_seconds"). Sequence
// contents are not descended into.
func GetKeyList(yml string) (KeyLookup, error) {
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal([]byte(yml), &doc); err != nil {
		return nil, err
	}
	keys := make(KeyLookup)
	walk("", doc, keys)
	return keys, nil
}

func walk(prefix string, m map[interface{}]interface{}, keys KeyLookup) {
	for k, v := range m {
		key := fmt.Sprint(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		keys[key] = nil
		if child, ok := v.(map[interface{}]interface{}); ok {
			walk(key, child, keys)
		}
	}
}

// IsDefined returns true if the dot-joined key path s was present in the document
func (k KeyLookup) IsDefined(s ...string) bool {
	_, ok := k[strings.Join(s, ".")]
	return ok
}
