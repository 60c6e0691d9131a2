package workbook

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
)

// Shape is a drawing shape found on a sheet.
type Shape struct {
	Name     string        `json:"name,omitempty"`
	Text     string        `json:"text,omitempty"`
	Geometry string        `json:"geometry,omitempty"` // preset geometry, e.g. "rect"
	Range    cellref.Range `json:"-"`                  // cells covered by the shape's anchor
	Location string        `json:"location"`
}

// ReadShapes lists the shapes anchored on each sheet of the xlsx file at
// path. Shapes inside a group report the group's anchor.
func ReadShapes(xlsxPath string) (map[string][]Shape, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	drawings, err := sheetDrawings(&r.Reader)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]Shape, len(drawings))
	for sheet, drawingPath := range drawings {
		data, err := fs.ReadFile(&r.Reader, drawingPath)
		if err != nil {
			return nil, err
		}
		result[sheet] = parseDrawing(data)
	}
	return result, nil
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

// sheetDrawings maps sheet names to the drawing part attached to them.
// Sheets without drawings are left out.
func sheetDrawings(r *zip.Reader) (map[string]string, error) {
	sheetIDs, err := workbookSheets(r)
	if err != nil {
		return nil, err
	}
	wbRels, err := readRelationships(r, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, rel := range wbRels {
		name, ok := sheetIDs[rel.ID]
		if !ok || !strings.HasSuffix(rel.Type, "/worksheet") {
			continue
		}
		sheetPath := resolvePart("xl", rel.Target)
		relsPath := path.Join(path.Dir(sheetPath), "_rels", path.Base(sheetPath)+".rels")

		sheetRels, err := readRelationships(r, relsPath)
		if err != nil {
			continue
		}
		for _, sr := range sheetRels {
			if strings.HasSuffix(sr.Type, "/drawing") {
				result[name] = resolvePart(path.Dir(sheetPath), sr.Target)
				break
			}
		}
	}
	return result, nil
}

// workbookSheets maps relationship ids to sheet names.
func workbookSheets(r *zip.Reader) (map[string]string, error) {
	data, err := fs.ReadFile(r, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		name, id := attr(se, "name"), attr(se, "id")
		if name != "" && id != "" {
			result[id] = name
		}
	}
	return result, nil
}

func readRelationships(r *zip.Reader, name string) ([]relationship, error) {
	data, err := fs.ReadFile(r, name)
	if err != nil {
		return nil, err
	}
	var rels []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			rels = append(rels, relationship{
				ID:     attr(se, "Id"),
				Type:   attr(se, "Type"),
				Target: attr(se, "Target"),
			})
		}
	}
	return rels, nil
}

// resolvePart resolves a relationship target against the directory of the
// part that references it. Absolute targets are rooted at the package.
func resolvePart(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(dir, target)
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func parseDrawing(data []byte) []Shape {
	var shapes []Shape
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor":
				shapes = append(shapes, parseAnchor(decoder)...)
			}
		}
	}
	return shapes
}

// anchorCell is an xdr:from or xdr:to marker. Offsets are in EMU.
type anchorCell struct {
	col, row       int
	colOff, rowOff int64
}

func parseAnchor(decoder *xml.Decoder) []Shape {
	var from, to anchorCell
	hasTo := false
	var shapes []Shape

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "from":
				from = parseAnchorCell(decoder)
			case "to":
				to = parseAnchorCell(decoder)
				hasTo = true
			case "sp":
				shapes = append(shapes, parseShape(decoder))
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}

	r := anchorRange(from, to, hasTo)
	for i := range shapes {
		shapes[i].Range = r
		shapes[i].Location = cellref.Format(r)
	}
	return shapes
}

// anchorRange returns the cells a shape covers. A to-marker sitting exactly
// on a cell boundary does not claim the cell it points at.
func anchorRange(from, to anchorCell, hasTo bool) cellref.Range {
	r := cellref.Range{Row: from.row, Col: from.col, RowCount: 1, ColCount: 1}
	if !hasTo {
		return r
	}
	endCol, endRow := to.col, to.row
	if to.colOff == 0 && endCol > from.col {
		endCol--
	}
	if to.rowOff == 0 && endRow > from.row {
		endRow--
	}
	r.ColCount = max(endCol-from.col+1, 1)
	r.RowCount = max(endRow-from.row+1, 1)
	return r
}

func parseAnchorCell(decoder *xml.Decoder) anchorCell {
	var c anchorCell
	for {
		token, err := decoder.Token()
		if err != nil {
			return c
		}
		switch t := token.(type) {
		case xml.StartElement:
			text, err := readElementText(decoder)
			if err != nil {
				return c
			}
			v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
			if err != nil {
				continue
			}
			switch t.Name.Local {
			case "col":
				c.col = int(v)
			case "row":
				c.row = int(v)
			case "colOff":
				c.colOff = v
			case "rowOff":
				c.rowOff = v
			}
		case xml.EndElement:
			return c
		}
	}
}

func parseShape(decoder *xml.Decoder) Shape {
	var s Shape
	var text strings.Builder

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cNvPr":
				s.Name = attr(t, "name")
				depth++
			case "prstGeom":
				s.Geometry = attr(t, "prst")
				depth++
			case "t":
				if txt, err := readElementText(decoder); err == nil {
					text.WriteString(txt)
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}

	s.Text = strings.TrimSpace(text.String())
	return s
}

// readElementText returns the character data up to the end of the element
// whose start tag was just read.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}
