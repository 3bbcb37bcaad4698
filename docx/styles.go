package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/docx2ctx/style"
)

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string      `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string      `xml:"styleId,attr"`
	Name    valXML      `xml:"name"`
	BasedOn valXML      `xml:"basedOn"`
	PPr     stylePPrXML `xml:"pPr"`
}

// stylePPrXML holds the paragraph properties of a style that matter for
// heading detection.
type stylePPrXML struct {
	OutlineLvl valXML `xml:"outlineLvl"`
}

// valXML is any element carrying a single w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// appPropertiesXML represents docProps/app.xml
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Template    string   `xml:"Template"`
	Application string   `xml:"Application"`
	Company     string   `xml:"Company"`
	Pages       string   `xml:"Pages"`
	Words       string   `xml:"Words"`
}

// HeadingStyles derives section levels for the paragraph styles of the
// document from word/styles.xml. A style is a heading when it, or a style
// it is based on, is named "heading N" or "title", or declares an outline
// level. Outline levels are 0-based in OOXML; level 0 maps to chapter.
//
// Documents without styles.xml yield an empty map.
func (r *Reader) HeadingStyles() (map[string]style.Level, error) {
	data, err := r.Part(StylesPart)
	if errors.Is(err, ErrNoPart) {
		return map[string]style.Level{}, nil
	}
	if err != nil {
		return nil, err
	}
	var styles stylesXML
	if err := xml.Unmarshal(data, &styles); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", StylesPart, err)
	}

	defs := make(map[string]*styleDefXML, len(styles.Styles))
	for i := range styles.Styles {
		defs[styles.Styles[i].StyleID] = &styles.Styles[i]
	}

	headings := make(map[string]style.Level)
	for id, def := range defs {
		if def.Type != "" && def.Type != "paragraph" {
			continue
		}
		for _, ancestor := range inheritanceChain(defs, id) {
			if lvl, ok := headingLevel(ancestor); ok {
				headings[id] = lvl
				break
			}
		}
	}
	return headings, nil
}

// inheritanceChain returns the style and its bases, derived style first.
func inheritanceChain(defs map[string]*styleDefXML, id string) []*styleDefXML {
	var chain []*styleDefXML
	visited := make(map[string]bool)
	for id != "" && !visited[id] {
		visited[id] = true
		def, ok := defs[id]
		if !ok {
			break
		}
		chain = append(chain, def)
		id = def.BasedOn.Val
	}
	return chain
}

// headingLevel detects a heading from a single style definition.
func headingLevel(def *styleDefXML) (style.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(def.Name.Val))
	switch {
	case name == "title":
		return style.Chapter, true
	case name == "subtitle":
		return style.Section, true
	case strings.HasPrefix(name, "heading "):
		if n, err := strconv.Atoi(strings.TrimPrefix(name, "heading ")); err == nil {
			return clampLevel(n), true
		}
	}
	if def.PPr.OutlineLvl.Val != "" {
		if n, err := strconv.Atoi(def.PPr.OutlineLvl.Val); err == nil && n >= 0 && n <= 8 {
			return clampLevel(n + 1), true
		}
	}
	return 0, false
}

func clampLevel(n int) style.Level {
	switch {
	case n < int(style.Chapter):
		return style.Chapter
	case n > int(style.MaxLevel):
		return style.MaxLevel
	}
	return style.Level(n)
}
