package lint

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildReportPassed(t *testing.T) {
	cases := []struct {
		name     string
		findings []Finding
		want     bool
	}{
		{"no findings", nil, true},
		{"advisory only", []Finding{{Rule: RuleGenericLinkText, Severity: SeverityAdvisory, Message: "m", Location: "link 0"}}, true},
		{"one blocking", []Finding{
			{Rule: RuleGenericLinkText, Severity: SeverityAdvisory, Message: "m", Location: "link 0"},
			{Rule: RulePromptLeakage, Severity: SeverityBlocking, Message: "m", Location: "section 0"},
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := BuildReport("issue.html", tc.findings, nil)
			if report.Passed != tc.want {
				t.Fatalf("passed = %v, want %v", report.Passed, tc.want)
			}
			if report.Findings == nil {
				t.Fatal("findings must serialize as an array, never null")
			}
		})
	}
}

func TestReportRoundTrip(t *testing.T) {
	findings := []Finding{
		{Rule: RuleGuardrailRefusals, Severity: SeverityBlocking, Message: `refusal boilerplate near "I'm sorry, but I can't"`, Location: "section 1"},
		{Rule: RuleGenericLinkText, Severity: SeverityAdvisory, Message: `generic link text "here"`, Location: "link 0"},
	}
	skips := []Skip{{Rule: RuleSectionParity, Reason: "no golden reference supplied"}}
	report := BuildReport("issue.html", findings, skips)

	data, err := report.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(report, decoded) {
		t.Fatalf("round trip mismatch:\nin:  %+v\nout: %+v", report, decoded)
	}
}

func TestReportRoundTripWithoutSkips(t *testing.T) {
	report := BuildReport("issue.html", nil, nil)
	data, err := report.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"findings": []`) {
		t.Fatalf("empty findings must stay an array:\n%s", data)
	}
	if strings.Contains(string(data), `"skipped"`) {
		t.Fatalf("empty skip list should be omitted:\n%s", data)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(report, decoded) {
		t.Fatalf("round trip mismatch:\nin:  %+v\nout: %+v", report, decoded)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidateReportJSON(t *testing.T) {
	report := BuildReport("issue.html", []Finding{
		{Rule: RuleRawURLsInCopy, Severity: SeverityAdvisory, Message: "raw url", Location: "section 0"},
	}, nil)
	data, err := report.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := ValidateReportJSON(string(data)); err != nil {
		t.Fatalf("encoded report must satisfy the schema: %v", err)
	}

	bad := []string{
		`{"source":"x","passed":true,"findings":[{"rule":"r","severity":"fatal","message":"m","location":"l"}]}`,
		`{"source":"x","findings":[]}`,
		`{"passed":true,"findings":[]}`,
		`{"source":"x","passed":true,"findings":[{"rule":"r","severity":"advisory","message":"m"}]}`,
	}
	for i, payload := range bad {
		if err := ValidateReportJSON(payload); err == nil {
			t.Fatalf("case %d: expected schema violation for %s", i, payload)
		}
	}
}

func TestSummariesCoverEveryRule(t *testing.T) {
	findings := []Finding{
		{Rule: RuleGuardrailRefusals, Severity: SeverityBlocking, Message: "m", Location: "section 0"},
		{Rule: RuleGenericLinkText, Severity: SeverityAdvisory, Message: "m", Location: "link 0"},
		{Rule: RuleGenericLinkText, Severity: SeverityAdvisory, Message: "m", Location: "link 1"},
	}
	skips := []Skip{{Rule: RuleSectionParity, Reason: "no golden reference supplied"}}
	report := BuildReport("issue.html", findings, skips)

	rows := report.Summaries()
	if len(rows) != len(RuleIDs()) {
		t.Fatalf("expected %d rows, got %d", len(RuleIDs()), len(rows))
	}
	byRule := make(map[string]RuleSummary, len(rows))
	for i, row := range rows {
		if row.Rule != RuleIDs()[i] {
			t.Fatalf("row %d out of catalogue order: %s", i, row.Rule)
		}
		byRule[row.Rule] = row
	}
	if row := byRule[RuleGenericLinkText]; row.Count != 2 || row.Blocking != 0 {
		t.Fatalf("unexpected generic link row: %+v", row)
	}
	if row := byRule[RuleGuardrailRefusals]; row.Count != 1 || row.Blocking != 1 {
		t.Fatalf("unexpected refusal row: %+v", row)
	}
	row := byRule[RuleSectionParity]
	if !row.Skipped || row.Reason == "" {
		t.Fatalf("parity row should record the skip: %+v", row)
	}
	if row := byRule[RulePromptLeakage]; row.Count != 0 || row.Skipped {
		t.Fatalf("quiet rule should report zero findings: %+v", row)
	}
}
