package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		tpl    string
		values map[string]string
		want   string
	}{
		{"simple", "Hi {{name}}", map[string]string{"name": "Asha"}, "Hi Asha"},
		{"inner whitespace", "Hi {{  name  }}!", map[string]string{"name": "Asha"}, "Hi Asha!"},
		{"repeated", "{{ a }}-{{a}}", map[string]string{"a": "x"}, "x-x"},
		{"missing becomes empty", "[{{ missing }}]", map[string]string{}, "[]"},
		{"nil map", "[{{ x }}]", nil, "[]"},
		{"explicit empty", "[{{ x }}]", map[string]string{"x": ""}, "[]"},
		{"value is not re-expanded", "{{ a }}", map[string]string{"a": "{{ b }}", "b": "no"}, "{{ b }}"},
		{"single braces untouched", "{ a } {{ a }", map[string]string{"a": "x"}, "{ a } {{ a }"},
		{"invalid name untouched", "{{ 1abc }}", map[string]string{"1abc": "x"}, "{{ 1abc }}"},
		{"no placeholders", "plain", map[string]string{"a": "x"}, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.tpl, tt.values))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Placeholders("{{a}} {{ b }} {{ a }}"))
	assert.Empty(t, Placeholders("none"))
}

func TestDefault_HasCorePlaceholders(t *testing.T) {
	names := Placeholders(Default())
	for _, want := range []string{"order_id", "customer_name", "items", "subtotal", "shipping", "total", "address_line1", "city", "pincode"} {
		assert.Contains(t, names, want)
	}
}

func TestLoader_EmbeddedDefault(t *testing.T) {
	l := NewLoader("")
	tpl, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), tpl)
}

func TestLoader_ReadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.html")
	require.NoError(t, os.WriteFile(path, []byte("v1 {{ order_id }}"), 0o644))

	l := NewLoader(path)
	first, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "v1 {{ order_id }}", first)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	second, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, first, second, "template is never reloaded")
}

func TestLoader_RetriesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.html")
	l := NewLoader(path)

	_, err := l.Load()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("late"), 0o644))
	tpl, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "late", tpl)

	require.NoError(t, os.Remove(path))
	tpl, err = l.Load()
	require.NoError(t, err, "a successful read stays cached")
	assert.Equal(t, "late", tpl)
}
