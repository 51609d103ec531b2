package ingest

import "testing"

func TestDecodeRowsMapsColumnsByHeader(t *testing.T) {
	payload := "Date,Name,Line\n2025-01-01,OP1,L3\n2025-01-02,OP2,L4\n"

	header, rows, dropped, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if len(header) != 3 || header[0] != "Date" {
		t.Fatalf("header = %v", header)
	}
	if dropped != 0 || len(rows) != 2 {
		t.Fatalf("rows = %d dropped = %d, want 2/0", len(rows), dropped)
	}
	if rows[1].Get("Name") != "OP2" {
		t.Fatalf(`rows[1]["Name"] = %q, want "OP2"`, rows[1].Get("Name"))
	}
}

func TestDecodeRowsShortRowReadsEmpty(t *testing.T) {
	payload := "Date,Name,Line\n2025-01-01,OP1\n"

	_, rows, _, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if rows[0].Has("Line") {
		t.Fatalf("missing trailing cell should read as empty")
	}
	if rows[0].Get("Name") != "OP1" {
		t.Fatalf(`rows[0]["Name"] = %q, want "OP1"`, rows[0].Get("Name"))
	}
}

func TestDecodeRowsStripsBOMAndWhitespace(t *testing.T) {
	payload := "\ufeffDate, Name \n 2025-01-01 ,OP1\n"

	header, rows, _, err := DecodeRows(payload)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if header[0] != "Date" || header[1] != "Name" {
		t.Fatalf("header = %v, want [Date Name]", header)
	}
	if rows[0].Get("Date") != "2025-01-01" {
		t.Fatalf(`rows[0]["Date"] = %q`, rows[0].Get("Date"))
	}
}

func TestDecodeRowsEmptyPayloadIsError(t *testing.T) {
	if _, _, _, err := DecodeRows(""); err == nil {
		t.Fatalf("DecodeRows(\"\") error = nil, want header error")
	}
}
