package ingest

import "testing"

func TestIsPending(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   bool
	}{
		{name: "exact sentinel", values: []string{"PENDIENTE"}, want: true},
		{name: "case insensitive", values: []string{"pendiente"}, want: true},
		{name: "surrounding whitespace", values: []string{"  Pendiente "}, want: true},
		{name: "any field", values: []string{"RESOLDER", "U12", "PENDIENTE", "SMT"}, want: true},
		{name: "completed fields", values: []string{"RESOLDER", "U12", "SMT"}, want: false},
		{name: "substring is not pending", values: []string{"NO PENDIENTE"}, want: false},
		{name: "prefix is not pending", values: []string{"PENDIENTE DE REVISION"}, want: false},
		{name: "no fields", values: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPending(tc.values...); got != tc.want {
				t.Fatalf("IsPending(%v) = %t, want %t", tc.values, got, tc.want)
			}
		})
	}
}

func TestRowClassString(t *testing.T) {
	cases := map[RowClass]string{
		RowUsable:    "usable",
		RowMalformed: "malformed",
		RowPending:   "pending",
		RowClass(99): "unknown",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Fatalf("RowClass(%d).String() = %q, want %q", class, got, want)
		}
	}
}
