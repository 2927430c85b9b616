package menu

import (
	"errors"
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
)

// Font errors.
var (
	// ErrNoFont is returned when no usable system font can be resolved.
	ErrNoFont = errors.New("menu: no usable system font")

	// ErrFontsClosed is returned when rendering with a released FontContext.
	ErrFontsClosed = errors.New("menu: font context is closed")
)

// FontContext owns the font resources needed to render menu labels.
//
// It is acquired by OpenFonts when the menu opens and released by Close
// when the menu closes, on every exit path. Nothing may retain the
// context or its faces past Close.
type FontContext struct {
	fontMap *fontscan.FontMap
}

// OpenFonts loads the system font index and resolves a sans-serif
// family for menu labels.
func OpenFonts() (*FontContext, error) {
	fm := fontscan.NewFontMap(nil)
	if err := fm.UseSystemFonts(""); err != nil {
		return nil, fmt.Errorf("menu: loading system fonts: %w", err)
	}
	fm.SetQuery(fontscan.Query{Families: []string{"sans-serif"}})

	fc := &FontContext{fontMap: fm}
	if fc.Face() == nil {
		return nil, ErrNoFont
	}
	slogger().Debug("menu: font context opened")
	return fc, nil
}

// Face resolves the label face. Returns nil after Close.
func (fc *FontContext) Face() *font.Face {
	if fc == nil || fc.fontMap == nil {
		return nil
	}
	return fc.fontMap.ResolveFace('A')
}

// Closed reports whether the context has been released.
func (fc *FontContext) Closed() bool {
	return fc == nil || fc.fontMap == nil
}

// Close releases the font resources. Safe to call multiple times.
func (fc *FontContext) Close() {
	if fc == nil || fc.fontMap == nil {
		return
	}
	fc.fontMap = nil
	slogger().Debug("menu: font context closed")
}
