package scanner

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePorts_Valid(t *testing.T) {
	cases := map[string][]int{
		"22":              {22},
		"80,22":           {22, 80},
		"80,443,80":       {80, 443},
		"5-1":             {1, 2, 3, 4, 5},
		"0,70000,22":      {22},
		" 22 , 80 ":       {22, 80},
		"22,80,8000-8002": {22, 80, 8000, 8001, 8002},
		"0-3":             {1, 2, 3},
		"65534-70000":     {65534, 65535},
		"3-3,2":           {2, 3},
		"1 - 2":           {1, 2},
	}
	for spec, want := range cases {
		t.Run(spec, func(t *testing.T) {
			got, err := ParsePorts(spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}
}

func TestParsePorts_EmptyIsNotAnError(t *testing.T) {
	for _, spec := range []string{"", ",,, ", "0", "70000,0", "70000-80000"} {
		t.Run(spec, func(t *testing.T) {
			got, err := ParsePorts(spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("expected no ports, got %v", got)
			}
		})
	}
}

func TestParsePorts_Invalid(t *testing.T) {
	cases := []string{
		"abc",
		"22,http",
		"1-x",
		"x-1",
		"-5",
		"1-2-3",
		"22.5",
	}
	for _, spec := range cases {
		t.Run(spec, func(t *testing.T) {
			_, err := ParsePorts(spec)
			if !errors.Is(err, ErrInvalidPortSpec) {
				t.Fatalf("expected ErrInvalidPortSpec for %q, got %v", spec, err)
			}
		})
	}
}

func TestParsePorts_AscendingAndBounded(t *testing.T) {
	specs := []string{
		"1-1024",
		"65535,1,32768-32770,1",
		"9000-8990,8995,0,65536",
		"443,22,80,22-25,20-23",
	}
	for _, spec := range specs {
		got, err := ParsePorts(spec)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", spec, err)
		}
		for i, port := range got {
			if port < 1 || port > 65535 {
				t.Fatalf("%q: port %d out of range", spec, port)
			}
			if i > 0 && got[i-1] >= port {
				t.Fatalf("%q: not strictly ascending at index %d: %v", spec, i, got)
			}
		}
	}
}
