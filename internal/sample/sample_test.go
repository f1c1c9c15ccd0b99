package sample

import (
	"reflect"
	"testing"
)

func TestAll(t *testing.T) {
	t.Parallel()

	if got := (All{}).Pick(3); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("All.Pick(3) = %v", got)
	}
	if got := (All{}).Pick(0); len(got) != 0 {
		t.Fatalf("All.Pick(0) = %v, want empty", got)
	}
}

/*
TestPercent verifies seeded reproducibility, the edge percentages, and that
the kept fraction lands near the requested one on a large input.
*/
func TestPercent(t *testing.T) {
	t.Parallel()

	a := Percent{P: 25, Seed: 42}.Pick(10000)
	b := Percent{P: 25, Seed: 42}.Pick(10000)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different samples: %d vs %d rows", len(a), len(b))
	}

	c := Percent{P: 25, Seed: 7}.Pick(10000)
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different seeds produced identical samples")
	}

	if got := len(a); got < 2000 || got > 3000 {
		t.Fatalf("25%% of 10000 kept %d rows, want roughly 2500", got)
	}

	for i := 1; i < len(a); i++ {
		if a[i] <= a[i-1] {
			t.Fatalf("indexes not strictly increasing at %d: %v", i, a[i-1:i+1])
		}
	}

	if got := (Percent{P: 100, Seed: 1}).Pick(5); len(got) != 5 {
		t.Fatalf("100%% kept %d of 5 rows", len(got))
	}
	if got := (Percent{P: 0, Seed: 1}).Pick(5); got != nil {
		t.Fatalf("0%% kept %v, want nil", got)
	}
}

/*
TestFixedCount verifies the interval spread: the first row is always kept,
the count is honored, and a count beyond n degrades to all rows.
*/
func TestFixedCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int
		n     int
		want  []int
	}{
		{name: "spread", count: 4, n: 8, want: []int{0, 2, 4, 6}},
		{name: "single", count: 1, n: 100, want: []int{0}},
		{name: "count_exceeds_n", count: 10, n: 3, want: []int{0, 1, 2}},
		{name: "zero_count", count: 0, n: 5, want: nil},
		{name: "empty_table", count: 4, n: 0, want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := FixedCount{Count: tt.count}.Pick(tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FixedCount{%d}.Pick(%d) = %v, want %v", tt.count, tt.n, got, tt.want)
			}
		})
	}
}

func TestForConfig(t *testing.T) {
	t.Parallel()

	if _, ok := ForConfig(0, 0, 0).(All); !ok {
		t.Fatalf("ForConfig(0,0) is not All")
	}
	if _, ok := ForConfig(100, 0, 0).(All); !ok {
		t.Fatalf("ForConfig(100,0) is not All")
	}
	if _, ok := ForConfig(50, 0, 1).(Percent); !ok {
		t.Fatalf("ForConfig(50,0) is not Percent")
	}
	if _, ok := ForConfig(50, 10, 1).(FixedCount); !ok {
		t.Fatalf("ForConfig(50,10) is not FixedCount; count takes precedence")
	}
}
