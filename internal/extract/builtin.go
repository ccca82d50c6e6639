package extract

import (
	"sort"
	"strings"
)

// Report type tags for the medical report schema.
const (
	DocLabReport    = "LAB_REPORT"
	DocPrescription = "PRESCRIPTION"
	DocClinicalNote = "CLINICAL_NOTE"
	DocOther        = "OTHER"
)

// ClinicalProfile is the schema for a user's health profile extracted from a
// medical report.
var ClinicalProfile = &Schema{
	Name:        "clinical_profile",
	Description: "Conditions, lab markers, medications, allergies and dietary restrictions found in a medical report.",
	Fields: []Field{
		{Name: "conditions", Kind: KindStringList, Required: true, Description: "Diagnosed conditions"},
		{Name: "lab_markers", Kind: KindStringMap, Description: "Lab marker name to value with unit"},
		{Name: "medications", Kind: KindStringList, Required: true, Description: "Current medications"},
		{Name: "allergies", Kind: KindStringList, Description: "Known allergies"},
		{Name: "dietary_restrictions", Kind: KindStringList, Description: "Dietary restrictions implied by the report"},
		{Name: "summary", Kind: KindOptionalString, Description: "Brief plain-language summary"},
	},
}

// MedicalReport is the schema used by the standalone report parser.
var MedicalReport = &Schema{
	Name:        "medical_report",
	Description: "Structured contents of a lab report, prescription or clinical note.",
	Fields: []Field{
		{
			Name:        "report_type",
			Kind:        KindEnum,
			Enum:        []string{DocLabReport, DocPrescription, DocClinicalNote, DocOther},
			Fallback:    DocOther,
			Description: "Kind of document",
		},
		{Name: "patient_name", Kind: KindOptionalString},
		{Name: "date", Kind: KindOptionalString, Description: "Report date as written"},
		{
			Name: "lab_results",
			Kind: KindRecordList,
			Fields: []Field{
				{Name: "test_name", Kind: KindOptionalString},
				{Name: "value", Kind: KindOptionalString},
				{Name: "unit", Kind: KindOptionalString},
				{Name: "is_abnormal", Kind: KindBool},
			},
		},
		{
			Name: "medications",
			Kind: KindRecordList,
			Fields: []Field{
				{Name: "name", Kind: KindOptionalString},
				{Name: "dosage", Kind: KindOptionalString},
				{Name: "frequency", Kind: KindOptionalString},
			},
		},
		{Name: "clinical_summary", Kind: KindOptionalString},
	},
}

var builtins = map[string]*Schema{
	ClinicalProfile.Name: ClinicalProfile,
	MedicalReport.Name:   MedicalReport,
}

// Lookup returns a built-in schema by name. Hyphens and underscores are
// interchangeable.
func Lookup(name string) (*Schema, bool) {
	s, ok := builtins[strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")]
	return s, ok
}

// SchemaNames lists the built-in schema names.
func SchemaNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile is the typed form of a ClinicalProfile record.
type Profile struct {
	Conditions          []string          `json:"conditions" yaml:"conditions"`
	LabMarkers          map[string]string `json:"lab_markers" yaml:"lab_markers"`
	Medications         []string          `json:"medications" yaml:"medications"`
	Allergies           []string          `json:"allergies" yaml:"allergies"`
	DietaryRestrictions []string          `json:"dietary_restrictions" yaml:"dietary_restrictions"`
	Summary             *string           `json:"summary" yaml:"summary"`
}

// LabResult is one row of a medical report's lab results.
type LabResult struct {
	TestName   *string `json:"test_name" yaml:"test_name"`
	Value      *string `json:"value" yaml:"value"`
	Unit       *string `json:"unit" yaml:"unit"`
	IsAbnormal *bool   `json:"is_abnormal" yaml:"is_abnormal"`
}

// Medication is one prescribed medication in a medical report.
type Medication struct {
	Name      *string `json:"name" yaml:"name"`
	Dosage    *string `json:"dosage" yaml:"dosage"`
	Frequency *string `json:"frequency" yaml:"frequency"`
}

// Report is the typed form of a MedicalReport record.
type Report struct {
	ReportType      *string      `json:"report_type" yaml:"report_type"`
	PatientName     *string      `json:"patient_name" yaml:"patient_name"`
	Date            *string      `json:"date" yaml:"date"`
	LabResults      []LabResult  `json:"lab_results" yaml:"lab_results"`
	Medications     []Medication `json:"medications" yaml:"medications"`
	ClinicalSummary *string      `json:"clinical_summary" yaml:"clinical_summary"`
}
