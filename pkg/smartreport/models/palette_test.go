package models

import "testing"

func TestEffectiveStyle(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		expected  Style
	}{
		{
			name:      "type palette",
			component: Component{Type: TypeTable},
			expected:  Style{BorderColor: "#10b981", BackgroundColor: "rgba(16, 185, 129, 0.1)", TextColor: "#10b981"},
		},
		{
			name:      "fallback palette",
			component: Component{Type: TypeGantt},
			expected:  Style{BorderColor: "#9ca3af", BackgroundColor: "rgba(156, 163, 175, 0.2)", TextColor: "#9ca3af"},
		},
		{
			name:      "border override drives text",
			component: Component{Type: TypeText, Style: &Style{BorderColor: "#000000"}},
			expected:  Style{BorderColor: "#000000", BackgroundColor: "rgba(59, 130, 246, 0.1)", TextColor: "#000000"},
		},
		{
			name:      "all overrides",
			component: Component{Type: TypeChart, Style: &Style{BorderColor: "#111111", BackgroundColor: "#222222", TextColor: "#333333"}},
			expected:  Style{BorderColor: "#111111", BackgroundColor: "#222222", TextColor: "#333333"},
		},
	}

	for _, tt := range tests {
		result := tt.component.EffectiveStyle()
		if result != tt.expected {
			t.Errorf("%s: EffectiveStyle() = %+v, expected %+v", tt.name, result, tt.expected)
		}
	}
}

func TestOpaqueHex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"#3B82F6", "#3b82f6", false},
		{"#fff", "#ffffff", false},
		{"rgba(255, 0, 0, 1)", "#ff0000", false},
		{"rgba(10, 20, 30, 0)", "#ffffff", false},
		{"rgba(0, 0, 0, 0.5)", "#808080", false},
		{"rgb(0, 0, 255)", "#0000ff", false},
		{"blue", "", true},
		{"#zzzzzz", "", true},
	}

	for _, tt := range tests {
		result, err := OpaqueHex(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("OpaqueHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if result != tt.expected {
			t.Errorf("OpaqueHex(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseComponentType(t *testing.T) {
	tests := []struct {
		input    string
		expected ComponentType
		ok       bool
	}{
		{"Text", TypeText, true},
		{"table", TypeTable, true},
		{" GANTT ", TypeGantt, true},
		{"formula", TypeFormula, true},
		{"Video", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		result, ok := ParseComponentType(tt.input)
		if result != tt.expected || ok != tt.ok {
			t.Errorf("ParseComponentType(%q) = (%q, %v), expected (%q, %v)",
				tt.input, result, ok, tt.expected, tt.ok)
		}
	}

	if !TypeImage.Legacy() || TypeChart.Legacy() {
		t.Error("expected only image and formula to be legacy types")
	}
}

func TestDefaultSize(t *testing.T) {
	if got := DefaultSize(TypeTable); got != (Size{Rows: 4, Cols: 5}) {
		t.Errorf("DefaultSize(Table) = %+v", got)
	}
	if got := DefaultSize("Unknown"); got != FallbackSize {
		t.Errorf("DefaultSize(Unknown) = %+v, expected fallback", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := TypeGantt.DisplayName(); got != "甘特表" {
		t.Errorf("Gantt.DisplayName() = %q", got)
	}
	if got := ComponentType("Map").DisplayName(); got != "Map" {
		t.Errorf("unknown DisplayName() = %q, expected the type itself", got)
	}
}
