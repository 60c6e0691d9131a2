// Package models defines data structures for smart report layouts.
package models

import "strings"

// ComponentType is the kind of content a component renders.
type ComponentType string

const (
	TypeText      ComponentType = "Text"
	TypeTable     ComponentType = "Table"
	TypeChart     ComponentType = "Chart"
	TypeList      ComponentType = "List"
	TypeMilestone ComponentType = "Milestone"
	TypeGantt     ComponentType = "Gantt"

	// TypeImage and TypeFormula are kept so older configurations still load.
	TypeImage   ComponentType = "Image"
	TypeFormula ComponentType = "Formula"
)

// ComponentTypes lists every accepted component type, current kinds first.
var ComponentTypes = []ComponentType{
	TypeText,
	TypeTable,
	TypeChart,
	TypeList,
	TypeMilestone,
	TypeGantt,
	TypeImage,
	TypeFormula,
}

// ParseComponentType resolves s to a known type, ignoring case.
func ParseComponentType(s string) (ComponentType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range ComponentTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Legacy reports whether t is only accepted for backward compatibility.
func (t ComponentType) Legacy() bool {
	return t == TypeImage || t == TypeFormula
}

var displayNames = map[ComponentType]string{
	TypeText:      "文本",
	TypeTable:     "表格",
	TypeChart:     "图表",
	TypeList:      "列表",
	TypeMilestone: "里程碑",
	TypeGantt:     "甘特表",
	TypeImage:     "图片",
	TypeFormula:   "公式",
}

// DisplayName returns the name shown to report authors for t. Unknown types
// are shown as is.
func (t ComponentType) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// Style holds optional color overrides for a component.
type Style struct {
	// BackgroundColor overrides the fill color.
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	// BorderColor overrides the border color.
	BorderColor string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	// TextColor overrides the label color.
	TextColor string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
}

// Component is a named, typed overlay bound to a rectangular cell range.
type Component struct {
	// ID is the stable unique identifier.
	ID string `json:"id" yaml:"id"`
	// Location is the upper-case range notation, e.g. "A1:C5".
	Location string `json:"location" yaml:"location"`
	// Type is the component kind.
	Type ComponentType `json:"type" yaml:"type"`
	// Prompt is free text carried through untouched.
	Prompt string `json:"prompt" yaml:"prompt"`
	// Name is the display label.
	Name string `json:"name" yaml:"name"`
	// Style holds color overrides (nil means the type palette).
	Style *Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// Clone returns a copy that shares no memory with c.
func (c Component) Clone() Component {
	if c.Style != nil {
		s := *c.Style
		c.Style = &s
	}
	return c
}

// Config is the exported layout document.
type Config struct {
	// TemplateID identifies the template the layout belongs to.
	TemplateID string `json:"template_id,omitempty" yaml:"template_id,omitempty"`
	// Version is a caller-defined revision label.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// ComponentList is the ordered list of components.
	ComponentList []Component `json:"component_list" yaml:"component_list"`
}
