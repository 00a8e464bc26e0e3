package services

import "testing"

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name      string
		learned   int
		docSubmit bool
		want      int
	}{
		{name: "nothing done", learned: 0, docSubmit: false, want: 0},
		{name: "one concept", learned: 1, docSubmit: false, want: 10},
		{name: "three concepts", learned: 3, docSubmit: false, want: 30},
		{name: "all five concepts", learned: 5, docSubmit: false, want: 50},
		{name: "learned count above cap", learned: 9, docSubmit: false, want: 50},
		{name: "negative learned count clamps to zero", learned: -2, docSubmit: false, want: 0},
		{name: "documentation only", learned: 0, docSubmit: true, want: 50},
		{name: "partial concepts plus documentation", learned: 2, docSubmit: true, want: 70},
		{name: "everything done", learned: 5, docSubmit: true, want: 100},
		{name: "overcounted concepts plus documentation", learned: 12, docSubmit: true, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProgress(tt.learned, tt.docSubmit)
			if got != tt.want {
				t.Fatalf("CalculateProgress(%d, %v) = %d, want %d", tt.learned, tt.docSubmit, got, tt.want)
			}
		})
	}
}
