package becomepass

import (
	"dario.cat/mergo"
)

// PasswordVar is the variable the resolved secret is stored under.
const PasswordVar = "ansible_become_password"

// CombineVars merges b into a. Nested maps are merged key by key and any
// other value in b replaces the one in a.
func CombineVars(a, b map[string]any) (map[string]any, error) {
	if a == nil {
		a = make(map[string]any)
	}
	if err := mergo.Merge(&a, b, mergo.WithOverride); err != nil {
		return nil, err
	}
	return a, nil
}

// Merge stores value under key in acc. An empty value leaves acc untouched.
func Merge(acc map[string]any, key, value string) (map[string]any, error) {
	if value == "" {
		return acc, nil
	}
	return CombineVars(acc, map[string]any{key: value})
}
