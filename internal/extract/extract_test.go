package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExtract_ProseAroundObject(t *testing.T) {
	raw := `Here is the result: {"conditions": [], "medications": ["X"]} Thanks!`

	got, err := Extract(raw, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := Record{
		"conditions":           []string{},
		"medications":          []string{"X"},
		"lab_markers":          map[string]string{},
		"allergies":            []string{},
		"dietary_restrictions": []string{},
		"summary":              nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ErrorKind
		wantIs   error
	}{
		{"not json", "not json at all", MalformedJSON, ErrMalformedJSON},
		{"empty", "", MalformedJSON, ErrMalformedJSON},
		{"whitespace only", "  \n\t ", MalformedJSON, ErrMalformedJSON},
		{"fences only", "```json\n```", MalformedJSON, ErrMalformedJSON},
		{"truncated", `{"conditions": ["a"`, MalformedJSON, ErrMalformedJSON},
		{"invalid inside braces", `result: {conditions: none}`, MalformedJSON, ErrMalformedJSON},
		{"truncated outer with complete inner", `{"profile": {"conditions": [], "medications": []}`, MalformedJSON, ErrMalformedJSON},
		{"broken outer with valid inner", `{oops {"conditions": [], "medications": []}}`, MalformedJSON, ErrMalformedJSON},
		{"prose then truncated outer", `Result: {"profile": {"conditions": [], "medications": []}`, MalformedJSON, ErrMalformedJSON},
		{"top-level array", `[{"conditions": []}]`, UnsupportedInputKind, ErrUnsupportedInput},
		{"top-level string", `"hello"`, UnsupportedInputKind, ErrUnsupportedInput},
		{"top-level number", `42`, UnsupportedInputKind, ErrUnsupportedInput},
		{"wrong type for required list", `{"conditions": [], "medications": "aspirin"}`, SchemaMismatch, ErrSchemaMismatch},
		{"missing required", `{"conditions": []}`, SchemaMismatch, ErrSchemaMismatch},
		{"null required", `{"conditions": null, "medications": []}`, SchemaMismatch, ErrSchemaMismatch},
		{"object in required list", `{"conditions": [{"name": "x"}], "medications": []}`, SchemaMismatch, ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw, ClinicalProfile)
			if err == nil {
				t.Fatal("Extract() expected error")
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v (err: %v)", got, tt.wantKind, err)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestExtract_MismatchNamesField(t *testing.T) {
	_, err := Extract(`{"conditions": [], "medications": "aspirin"}`, ClinicalProfile)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Field != "medications" {
		t.Errorf("Field = %q, want medications", e.Field)
	}
	if !strings.Contains(err.Error(), "schema_mismatch") {
		t.Errorf("Error() = %q, want kind in message", err.Error())
	}
}

func TestExtract_FirstOfSiblingObjects(t *testing.T) {
	schema := &Schema{Name: "pair", Fields: []Field{{Name: "a", Kind: KindString, Required: true}}}

	got, err := Extract(`{"a":1} {"b":2}`, schema)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := Record{"a": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestExtract_FencedEqualsUnwrapped(t *testing.T) {
	body := `{"conditions": ["Type 2 diabetes"], "medications": ["Metformin 500mg"], "lab_markers": {"HbA1c": "7.2%"}}`
	wrappers := []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"Sure! Here you go:\n```JSON\n" + body + "\n```\nLet me know if you need more.",
	}

	want, err := Extract(body, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract(unwrapped) error = %v", err)
	}
	for _, raw := range wrappers {
		got, err := Extract(raw, ClinicalProfile)
		if err != nil {
			t.Fatalf("Extract(%q) error = %v", raw, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract(%q) = %#v, want %#v", raw, got, want)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []struct {
		schema *Schema
		raw    string
	}{
		{ClinicalProfile, `{"conditions": ["Hypertension"], "medications": ["Lisinopril"], "lab_markers": {"LDL": 130}, "summary": "Elevated LDL"}`},
		{ClinicalProfile, `{"conditions": [], "medications": []}`},
		{MedicalReport, `{"report_type": "lab_report", "patient_name": "A. Patient", "lab_results": [{"test_name": "Glucose", "value": 110, "unit": "mg/dL", "is_abnormal": true}], "medications": [{"name": "Metformin"}]}`},
		{MedicalReport, `{}`},
	}

	for _, in := range inputs {
		for _, mode := range []Mode{Permissive, Strict} {
			first, err := Extract(in.raw, in.schema, WithMode(mode))
			if err != nil {
				t.Fatalf("Extract(%q, %v) error = %v", in.raw, mode, err)
			}
			data, err := json.Marshal(first)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			second, err := Extract(string(data), in.schema, WithMode(mode))
			if err != nil {
				t.Fatalf("re-Extract(%s, %v) error = %v", data, mode, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("not idempotent in %v mode:\nfirst:  %#v\nsecond: %#v", mode, first, second)
			}
		}
	}
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	raw := `Note {not json} then {"conditions": ["a {b}"], "medications": ["c } d"], "summary": "quote \" and {"}`

	got, err := Extract(raw, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c := got.Strings("conditions"); len(c) != 1 || c[0] != "a {b}" {
		t.Errorf("conditions = %v", c)
	}
	if m := got.Strings("medications"); len(m) != 1 || m[0] != "c } d" {
		t.Errorf("medications = %v", m)
	}
	if s := got.OptString("summary"); s == nil || *s != `quote " and {` {
		t.Errorf("summary = %v", s)
	}
}

func TestExtract_NestedObjectTakesOuter(t *testing.T) {
	raw := `prefix {"conditions": [], "medications": [], "lab_markers": {"A1c": "6.1"}} suffix {"conditions": ["other"], "medications": []}`

	got, err := Extract(raw, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.StringMap("lab_markers")["A1c"] != "6.1" {
		t.Errorf("lab_markers = %v", got.StringMap("lab_markers"))
	}
	if len(got.Strings("conditions")) != 0 {
		t.Errorf("conditions = %v, want first object's", got.Strings("conditions"))
	}
}

func TestExtract_Coercion(t *testing.T) {
	raw := `{"conditions": ["Anemia", 42, true], "medications": [], "lab_markers": {"Hemoglobin": 10.5, "Ferritin": "8 ng/mL"}}`

	got, err := Extract(raw, ClinicalProfile, WithMode(Strict))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if want := []string{"Anemia", "42", "true"}; !reflect.DeepEqual(got.Strings("conditions"), want) {
		t.Errorf("conditions = %v, want %v", got.Strings("conditions"), want)
	}
	if got.StringMap("lab_markers")["Hemoglobin"] != "10.5" {
		t.Errorf("lab_markers = %v", got.StringMap("lab_markers"))
	}
}

func TestExtract_ExtraKeysDropped(t *testing.T) {
	got, err := Extract(`{"conditions": [], "medications": [], "confidence": 0.9}`, ClinicalProfile, WithMode(Strict))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if _, ok := got["confidence"]; ok {
		t.Error("unknown key should be dropped")
	}
	if len(got) != len(ClinicalProfile.Fields) {
		t.Errorf("record has %d keys, want %d", len(got), len(ClinicalProfile.Fields))
	}
}

func TestExtract_PermissiveVersusStrict(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		raw    string
		check  func(t *testing.T, rec Record)
	}{
		{
			name:   "unknown enum",
			schema: MedicalReport,
			raw:    `{"report_type": "XRAY"}`,
			check: func(t *testing.T, rec Record) {
				if rec.String("report_type") != DocOther {
					t.Errorf("report_type = %v, want %s", rec["report_type"], DocOther)
				}
			},
		},
		{
			name:   "string boolean",
			schema: MedicalReport,
			raw:    `{"lab_results": [{"test_name": "TSH", "is_abnormal": "true"}]}`,
			check: func(t *testing.T, rec Record) {
				rows := rec.Records("lab_results")
				if len(rows) != 1 {
					t.Fatalf("lab_results = %v", rows)
				}
				if b := rows[0].Bool("is_abnormal"); b == nil || !*b {
					t.Errorf("is_abnormal = %v, want true", rows[0]["is_abnormal"])
				}
			},
		},
		{
			name:   "optional field wrong type",
			schema: ClinicalProfile,
			raw:    `{"conditions": [], "medications": [], "allergies": "peanuts"}`,
			check: func(t *testing.T, rec Record) {
				if a := rec.Strings("allergies"); a == nil || len(a) != 0 {
					t.Errorf("allergies = %#v, want empty list", rec["allergies"])
				}
			},
		},
		{
			name:   "null list element",
			schema: ClinicalProfile,
			raw:    `{"conditions": ["Asthma", null], "medications": []}`,
			check: func(t *testing.T, rec Record) {
				if c := rec.Strings("conditions"); !reflect.DeepEqual(c, []string{"Asthma"}) {
					t.Errorf("conditions = %v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notes []string
			rec, err := Extract(tt.raw, tt.schema, WithNotes(&notes))
			if err != nil {
				t.Fatalf("permissive Extract() error = %v", err)
			}
			tt.check(t, rec)
			if len(notes) == 0 {
				t.Error("permissive Extract() should record a note")
			}

			_, err = Extract(tt.raw, tt.schema, WithMode(Strict))
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("strict Extract() error = %v, want schema mismatch", err)
			}
		})
	}
}

func TestExtract_EnumCaseInsensitive(t *testing.T) {
	got, err := Extract(`{"report_type": " prescription "}`, MedicalReport, WithMode(Strict))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.String("report_type") != DocPrescription {
		t.Errorf("report_type = %v", got["report_type"])
	}
}

func TestExtract_MedicalReportDefaults(t *testing.T) {
	got, err := Extract(`{"patient_name": "Jordan"}`, MedicalReport)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := Record{
		"report_type":      nil,
		"patient_name":     "Jordan",
		"date":             nil,
		"lab_results":      []Record{},
		"medications":      []Record{},
		"clinical_summary": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestRecord_Decode(t *testing.T) {
	rec, err := Extract(`{"report_type": "LAB_REPORT", "lab_results": [{"test_name": "LDL", "value": "160", "unit": "mg/dL", "is_abnormal": true}], "medications": [{"name": "Atorvastatin", "dosage": "20mg"}]}`, MedicalReport)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	var report Report
	if err := rec.Decode(&report); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if report.ReportType == nil || *report.ReportType != DocLabReport {
		t.Errorf("ReportType = %v", report.ReportType)
	}
	if len(report.LabResults) != 1 || *report.LabResults[0].TestName != "LDL" || !*report.LabResults[0].IsAbnormal {
		t.Errorf("LabResults = %+v", report.LabResults)
	}
	if len(report.Medications) != 1 || report.Medications[0].Frequency != nil {
		t.Errorf("Medications = %+v", report.Medications)
	}
}

func TestSchema_JSONSchema(t *testing.T) {
	doc := ClinicalProfile.JSONSchema()
	if doc["title"] != "clinical_profile" {
		t.Errorf("title = %v", doc["title"])
	}
	required, _ := doc["required"].([]string)
	if !reflect.DeepEqual(required, ClinicalProfile.FieldNames()) {
		t.Errorf("required = %v, want all fields", required)
	}
	if !reflect.DeepEqual(ClinicalProfile.Required(), []string{"conditions", "medications"}) {
		t.Errorf("Required() = %v", ClinicalProfile.Required())
	}
	if !strings.Contains(MedicalReport.JSONSchemaText(), `"LAB_REPORT"`) {
		t.Error("JSONSchemaText() should list enum tags")
	}
}

func TestSchema_CompiledOnce(t *testing.T) {
	first, err := MedicalReport.compiled()
	if err != nil {
		t.Fatalf("compiled() error = %v", err)
	}
	second, err := MedicalReport.compiled()
	if err != nil {
		t.Fatalf("compiled() error = %v", err)
	}
	if first != second {
		t.Error("compiled() should reuse the cached schema")
	}

	raw := `{"report_type": "LAB_REPORT", "lab_results": [{"test_name": "LDL", "is_abnormal": true}], "medications": []}`
	for i := 0; i < 2; i++ {
		if _, err := Extract(raw, MedicalReport, WithMode(Strict)); err != nil {
			t.Fatalf("strict Extract() #%d error = %v", i, err)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"clinical_profile", "clinical-profile", " Medical_Report "} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Lookup("recipe"); ok {
		t.Error("Lookup(recipe) should fail")
	}
	if got := SchemaNames(); !reflect.DeepEqual(got, []string{"clinical_profile", "medical_report"}) {
		t.Errorf("SchemaNames() = %v", got)
	}
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{}\n```":               "{}",
		"```\n{}\n```":                   "{}",
		"\uFEFF  {\"a\":1}  ":            `{"a":1}`,
		"Here:\n```JSON \n{}\n```\nDone": "Here:\n\n{}\n\nDone",
		"text ```python x``` y":          "text ```python x``` y",
		"{\"a\": \"```\"}":               `{"a": "` + "```" + `"}`,
	}
	for in, want := range tests {
		if got := StripFences(in); got != want {
			t.Errorf("StripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtract_BackticksInsideStrings(t *testing.T) {
	raw := "```json\n{\"conditions\": [\"see ```notes```\"], \"medications\": [], \"summary\": \"```\"}\n```"

	got, err := Extract(raw, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c := got.Strings("conditions"); len(c) != 1 || c[0] != "see ```notes```" {
		t.Errorf("conditions = %q", c)
	}
	if s := got.OptString("summary"); s == nil || *s != "```" {
		t.Errorf("summary = %v", s)
	}
}

func TestExtract_SkipsUndecodableSpan(t *testing.T) {
	raw := `Draft {bad {"conditions": ["inner"], "medications": []}} final {"conditions": ["outer"], "medications": []}`

	got, err := Extract(raw, ClinicalProfile)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c := got.Strings("conditions"); len(c) != 1 || c[0] != "outer" {
		t.Errorf("conditions = %v, want the object after the undecodable span", c)
	}
}
