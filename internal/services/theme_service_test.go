package services_test

import (
	"testing"

	"github.com/BradenHooton/lockbox/internal/models"
	"github.com/BradenHooton/lockbox/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestThemeService(t *testing.T) {
	theme := services.NewThemeService(models.ThemeMode("sepia"))
	assert.Equal(t, models.ThemeLight, theme.Mode())

	assert.Equal(t, models.ThemeDark, theme.Toggle())
	view := theme.View()
	assert.Equal(t, models.ThemeDark, view.Mode)
	assert.Equal(t, models.PaletteFor(models.ThemeDark), view.Colors)
	assert.Equal(t, models.DefaultSpacing, view.Spacing)

	assert.ErrorIs(t, theme.Set("neon"), models.ErrBadRequest)
	assert.NoError(t, theme.Set(models.ThemeLight))
	assert.Equal(t, models.ThemeLight, theme.Mode())
}
