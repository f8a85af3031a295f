package models

import (
	"fmt"
	"strings"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used until the user picks one.
const DefaultTheme = ThemeLight

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

func (t Theme) IsDark() bool {
	return t == ThemeDark
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t.IsDark() {
		return ThemeLight
	}
	return ThemeDark
}
