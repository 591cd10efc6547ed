package services

import (
	"fmt"
	"sync"

	"github.com/BradenHooton/lockbox/internal/models"
)

// ThemeView is the palette and spacing the shell renders with
type ThemeView struct {
	Mode    models.ThemeMode `json:"mode"`
	Colors  models.Palette   `json:"colors"`
	Spacing models.Spacing   `json:"spacing"`
}

// ThemeService holds the in-memory light/dark selection
type ThemeService struct {
	mu   sync.RWMutex
	mode models.ThemeMode
}

func NewThemeService(initial models.ThemeMode) *ThemeService {
	if !initial.Valid() {
		initial = models.ThemeLight
	}
	return &ThemeService{mode: initial}
}

func (s *ThemeService) Mode() models.ThemeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *ThemeService) Set(mode models.ThemeMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown theme %q", models.ErrBadRequest, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

// Toggle flips between light and dark and returns the new mode
func (s *ThemeService) Toggle() models.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == models.ThemeDark {
		s.mode = models.ThemeLight
	} else {
		s.mode = models.ThemeDark
	}
	return s.mode
}

func (s *ThemeService) View() ThemeView {
	mode := s.Mode()
	return ThemeView{
		Mode:    mode,
		Colors:  models.PaletteFor(mode),
		Spacing: models.DefaultSpacing,
	}
}
