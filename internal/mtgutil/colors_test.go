package mtgutil

import (
	"reflect"
	"testing"
)

func TestExtractColorsWUBRGOrder(t *testing.T) {
	got := ExtractColors("{G}{W}{U}{2}")
	want := []string{"W", "U", "G"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractColors = %v, want %v", got, want)
	}
}

func TestExtractColorsIgnoresGenericAndX(t *testing.T) {
	got := ExtractColors("{X}{C}{3}")
	if len(got) != 0 {
		t.Errorf("expected no colors, got %v", got)
	}
}

func TestSortWUBRG(t *testing.T) {
	colors := []string{"G", "B", "W"}
	SortWUBRG(colors)
	want := []string{"W", "B", "G"}
	if !reflect.DeepEqual(colors, want) {
		t.Errorf("SortWUBRG = %v, want %v", colors, want)
	}
}
