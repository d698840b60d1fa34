package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestCategoryColors(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#42a5f5"), CategoryAccent("blue"))
	assert.Equal(t, lipgloss.Color(fallbackHex), CategoryAccent("teal"))

	for _, name := range []string{"blue", "green", "pink", "purple", "orange", "unknown"} {
		tint := CategoryTint(name)
		assert.Len(t, string(tint), 7, name)
		assert.NotEqual(t, CategoryAccent(name), tint, name)
	}
}
