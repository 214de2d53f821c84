package service

import (
	"testing"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

func TestParseCSVCurrentSchema(t *testing.T) {
	data := []byte("stake,odds,profit,set\n" +
		"25.00,4.00,31.25,nba\n" +
		"10,,-10,\n" +
		"\"$1,250.00\",1.90,1125.00,whales\n")

	rows, rowErrs, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("row errors: %v", rowErrs)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	if rows[0].Stake != 25 || rows[0].Profit != 31.25 || rows[0].SetName != "nba" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].Odds == nil || *rows[0].Odds != 4 {
		t.Errorf("row 0 odds = %v, want 4", rows[0].Odds)
	}
	if rows[1].Odds != nil {
		t.Errorf("row 1 odds = %v, want nil for empty field", rows[1].Odds)
	}
	if rows[1].SetName != "" {
		t.Errorf("row 1 set = %q, want empty", rows[1].SetName)
	}
	if rows[2].Stake != 1250 {
		t.Errorf("row 2 stake = %v, want 1250 (currency formatting stripped)", rows[2].Stake)
	}
}

func TestParseCSVLegacySchema(t *testing.T) {
	data := []byte("set,profit\nnba,10.50\nepl,-3\n")

	rows, rowErrs, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].SetName != "nba" || rows[0].Profit != 10.5 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].Stake != 0 {
		t.Errorf("legacy rows carry no stake, got %v", rows[0].Stake)
	}
}

func TestParseCSVBadRowsAreSoftErrors(t *testing.T) {
	data := []byte("stake,odds,profit\n" +
		"10,2.0,5\n" +
		"oops,2.0,5\n" +
		"10,huh,5\n" +
		"\n" +
		"20,3.0,not-a-number\n")

	rows, rowErrs, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1 good row", len(rows))
	}
	if len(rowErrs) != 3 {
		t.Fatalf("row errors = %v, want 3", rowErrs)
	}
	// Line numbers count the header.
	if rowErrs[0].Line != 3 {
		t.Errorf("first error line = %d, want 3", rowErrs[0].Line)
	}
}

func TestParseCSVResultColumn(t *testing.T) {
	data := []byte("stake,odds,profit,result\n" +
		"10,2.0,11,Won\n" +
		"10,2.0,-10,LOSS\n" +
		"10,2.0,0,void\n" +
		"10,2.0,0,maybe\n")

	rows, rowErrs, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Result != domain.ResultWon {
		t.Errorf("row 0 result = %q, want won", rows[0].Result)
	}
	if rows[1].Result != domain.ResultLost {
		t.Errorf("row 1 result = %q, want lost", rows[1].Result)
	}
	if rows[2].Result != domain.ResultBreakEven {
		t.Errorf("row 2 result = %q, want break_even", rows[2].Result)
	}
	if len(rowErrs) != 1 || rowErrs[0].Line != 5 {
		t.Fatalf("row errors = %v, want one at line 5", rowErrs)
	}
}

func TestParseCSVMissingProfitHeader(t *testing.T) {
	if _, _, err := parseCSV([]byte("stake,odds\n10,2.0\n")); err == nil {
		t.Error("header without profit should be a hard error")
	}
}
