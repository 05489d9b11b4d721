package sensor

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Reading
		ok   bool
	}{
		{"comma delimited", "16.611,-1.011,1023,1023,1023", Reading{Force: 16.611, DeltaForce: -1.011, FSR1: 1023, FSR2: 1023, FSR3: 1023}, true},
		{"whitespace delimited", "2.5 0.1 10 20 30", Reading{Force: 2.5, DeltaForce: 0.1, FSR1: 10, FSR2: 20, FSR3: 30}, true},
		{"comma plus spaces", "0.5, -0.25, 1, 2, 3", Reading{Force: 0.5, DeltaForce: -0.25, FSR1: 1, FSR2: 2, FSR3: 3}, true},
		{"zero values", "0,0,0,0,0", Reading{}, true},
		{"empty line", "", Reading{}, false},
		{"banner", "Baseline complete. Starting main recording", Reading{}, false},
		{"too few tokens", "16.611,-1.011,1023,1023", Reading{}, false},
		{"too many tokens", "7.19,16.611,-1.011,1023,1023,1023", Reading{}, false},
		{"non numeric force", "x,-1.011,1023,1023,1023", Reading{}, false},
		{"empty field not collapsed", "1,,2,3,4,5", Reading{}, false},
		{"trailing comma", "1,0.5,10,20,30,", Reading{}, false},
		{"float fsr", "1.0,0.5,10.5,20,30", Reading{}, false},
		{"fsr above range", "1.0,0.5,1024,20,30", Reading{}, false},
		{"fsr negative", "1.0,0.5,-1,20,30", Reading{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.in)
		if ok != tt.ok {
			t.Fatalf("%s: ParseLine(%q) ok=%v want %v", tt.name, tt.in, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Fatalf("%s: ParseLine(%q) = %+v; want %+v", tt.name, tt.in, got, tt.want)
		}
	}
}

// A clean-CSV row minus its time column must re-parse to the identical
// reading, whatever precision the device sent.
func TestCleanRecordRoundTrip(t *testing.T) {
	lines := []string{
		"16.611,-1.011,1023,1023,1023",
		"0.01,-0.001,0,512,7",
		"100,0,1,2,3",
		"3.14159,-2.71828,999,1000,1001",
	}
	for _, line := range lines {
		r, ok := ParseLine(line)
		if !ok {
			t.Fatalf("ParseLine(%q) failed", line)
		}
		r.Elapsed = 7.19
		rec := r.CleanRecord()
		if len(rec) != 6 {
			t.Fatalf("CleanRecord length = %d", len(rec))
		}
		back, ok := ParseLine(strings.Join(rec[1:], ","))
		if !ok {
			t.Fatalf("re-parse of %v failed", rec)
		}
		back.Elapsed = r.Elapsed
		if back != r {
			t.Fatalf("round trip: got %+v want %+v", back, r)
		}
	}
}

func TestCleanRecordFormatting(t *testing.T) {
	r := Reading{Elapsed: 7.19, Force: 16.611, DeltaForce: -1.011, FSR1: 1023, FSR2: 1023, FSR3: 1023}
	got := strings.Join(r.CleanRecord(), ",")
	want := "7.19,16.611,-1.011,1023,1023,1023"
	if got != want {
		t.Fatalf("clean row = %q; want %q", got, want)
	}

	// time always carries two decimals
	r = Reading{Elapsed: 3, Force: 1, DeltaForce: 0, FSR1: 1, FSR2: 2, FSR3: 3}
	got = strings.Join(r.CleanRecord(), ",")
	want = "3.00,1,0,1,2,3"
	if got != want {
		t.Fatalf("clean row = %q; want %q", got, want)
	}
}

func TestCleanHeader(t *testing.T) {
	want := "Time(s),Force(N),DeltaF(N),FSR1,FSR2,FSR3"
	if got := strings.Join(CleanHeader(), ","); got != want {
		t.Fatalf("header = %q; want %q", got, want)
	}
}
