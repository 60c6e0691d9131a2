package workbook

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/payload"
)

// PropertyName is the custom document property holding the component list.
const PropertyName = "smartReportComponents"

// Embed stores components as JSON in the workbook's custom properties,
// replacing any list embedded earlier.
func Embed(f *excelize.File, components []models.Component) error {
	if components == nil {
		components = []models.Component{}
	}
	data, err := json.Marshal(components)
	if err != nil {
		return err
	}
	return f.SetCustomProps(excelize.CustomProperty{Name: PropertyName, Value: string(data)})
}

// Extract returns the component list stored by Embed. It is validated like
// an imported configuration, so missing ids are regenerated and locations
// normalised. ErrNotEmbedded is returned when the workbook has no list.
func Extract(f *excelize.File) ([]models.Component, error) {
	props, err := f.GetCustomProps()
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		if p.Name != PropertyName {
			continue
		}
		s, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: property %s holds %T", payload.ErrImportFormat, PropertyName, p.Value)
		}
		cfg, err := payload.Decode([]byte(`{"component_list":` + s + `}`))
		if err != nil {
			return nil, err
		}
		return cfg.ComponentList, nil
	}
	return nil, ErrNotEmbedded
}
