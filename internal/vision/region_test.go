package vision

import (
	"errors"
	"image"
	"testing"
)

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{name: "Full screen", region: NewRegion(0, 0, 1, 1), wantErr: false},
		{name: "Center patch", region: NewRegion(0.25, 0.25, 0.75, 0.75), wantErr: false},
		{name: "Coordinate above 1", region: NewRegion(0, 0, 1.5, 1), wantErr: true},
		{name: "Negative coordinate", region: NewRegion(-0.1, 0, 1, 1), wantErr: true},
		{name: "Inverted horizontally", region: NewRegion(0.8, 0.1, 0.2, 0.9), wantErr: true},
		{name: "Empty", region: NewRegion(0.5, 0.5, 0.5, 0.5), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Expected validation error for %+v", tt.region)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("Expected ErrInvalidRegion, got %v", err)
			}
		})
	}
}

func TestRegionToPixels(t *testing.T) {
	region := NewRegion(0.25, 0.5, 0.75, 1.0)
	got := region.ToPixels(1920, 1080)
	want := image.Rect(480, 540, 1440, 1080)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestMonitorContains(t *testing.T) {
	m := Monitor{Index: 1, Bounds: image.Rect(1920, 0, 3840, 1080)}

	if !m.Contains(image.Point{X: 2000, Y: 500}) {
		t.Error("Point inside the monitor should be contained")
	}
	if m.Contains(image.Point{X: 100, Y: 500}) {
		t.Error("Point on another monitor should not be contained")
	}
}
