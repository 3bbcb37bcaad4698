package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/tsawler/docx2ctx/model"
)

const (
	corePropsPart   = "docProps/core.xml"
	appPropsPart    = "docProps/app.xml"
	customPropsPart = "docProps/custom.xml"
)

// Metadata reads the package properties: core.xml for the Dublin Core
// fields, app.xml for the producing application and custom.xml for user
// defined properties. Every part is optional.
//
// A custom property named "subtitle" fills Metadata.Subtitle, since core
// properties have no such field.
func (r *Reader) Metadata() (model.Metadata, error) {
	meta := model.NewMetadata()

	if err := r.coreProperties(&meta); err != nil {
		return meta, fmt.Errorf("parsing %s: %w", corePropsPart, err)
	}
	if err := r.appProperties(&meta); err != nil {
		return meta, fmt.Errorf("parsing %s: %w", appPropsPart, err)
	}
	if err := r.customProperties(&meta); err != nil {
		return meta, fmt.Errorf("parsing %s: %w", customPropsPart, err)
	}
	if meta.Subtitle == "" {
		for k, v := range meta.Custom {
			if strings.EqualFold(k, "subtitle") {
				meta.Subtitle = v
				break
			}
		}
	}
	return meta, nil
}

// queryPart parses an optional part into a node tree. It returns nil, nil
// when the part is absent.
func (r *Reader) queryPart(name string) (*xmlquery.Node, error) {
	data, err := r.Part(name)
	if errors.Is(err, ErrNoPart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return xmlquery.Parse(bytes.NewReader(data))
}

// propertyText returns the trimmed inner text of the first element with the given
// local name, ignoring namespaces.
func propertyText(doc *xmlquery.Node, local string) (string, error) {
	n, err := xmlquery.Query(doc, "//*[local-name()='"+local+"']")
	if err != nil || n == nil {
		return "", err
	}
	return strings.TrimSpace(n.InnerText()), nil
}

func (r *Reader) coreProperties(meta *model.Metadata) error {
	doc, err := r.queryPart(corePropsPart)
	if err != nil || doc == nil {
		return err
	}

	fields := []struct {
		local string
		dst   *string
	}{
		{"title", &meta.Title},
		{"subject", &meta.Subject},
		{"creator", &meta.Author},
		{"description", &meta.Description},
		{"language", &meta.Language},
	}
	for _, f := range fields {
		v, err := propertyText(doc, f.local)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	keywords, err := propertyText(doc, "keywords")
	if err != nil {
		return err
	}
	meta.Keywords = splitKeywords(keywords)

	modified, err := propertyText(doc, "modified")
	if err != nil {
		return err
	}
	if modified != "" {
		if t, err := time.Parse(time.RFC3339, modified); err == nil {
			meta.Modified = t
		}
	}
	return nil
}

func (r *Reader) appProperties(meta *model.Metadata) error {
	data, err := r.Part(appPropsPart)
	if errors.Is(err, ErrNoPart) {
		return nil
	}
	if err != nil {
		return err
	}
	var app appPropertiesXML
	if err := xml.Unmarshal(data, &app); err != nil {
		return err
	}
	meta.Creator = strings.TrimSpace(app.Application)
	if app.Company != "" {
		meta.Custom["company"] = strings.TrimSpace(app.Company)
	}
	return nil
}

func (r *Reader) customProperties(meta *model.Metadata) error {
	doc, err := r.queryPart(customPropsPart)
	if err != nil || doc == nil {
		return err
	}
	props, err := xmlquery.QueryAll(doc, "//*[local-name()='property']")
	if err != nil {
		return err
	}
	for _, p := range props {
		name := strings.TrimSpace(p.SelectAttr("name"))
		if name == "" {
			continue
		}
		meta.Custom[name] = strings.TrimSpace(p.InnerText())
	}
	return nil
}

// splitKeywords splits a keyword list on commas and semicolons.
func splitKeywords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
