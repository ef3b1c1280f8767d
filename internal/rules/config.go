package rules

// Duck-typed accessors over raw node config maps. Missing or
// type-mismatched values read as absent features, never as errors.

// cfgString returns the first string value found under any of the keys.
func cfgString(config map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := config[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// cfgHas reports whether any of the keys is present with a non-nil value.
func cfgHas(config map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := config[k]; ok && v != nil {
			return true
		}
	}
	return false
}

// cfgBool returns the boolean value under the key, false when absent or
// not a bool.
func cfgBool(config map[string]any, key string) bool {
	v, ok := config[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
