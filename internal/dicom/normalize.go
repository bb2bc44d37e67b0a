// Package dicom normalizes the raw string fields an imaging source reports
// (modality codes, DICOM-style dates, times, ages and person names) into the
// vocabulary the worklist, report and terminology stores consume. All
// functions are pure; the wire protocol that produced the fields is out of
// scope.
package dicom

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/serenvale/radcore/internal/platform/errs"
)

// ExamType pairs the internal exam-type key with its localized display label.
type ExamType struct {
	Key     string
	Display string
}

// Modality agents used to filter terminology retrieval.
const (
	AgentIRM     = "irm"
	AgentTDM     = "tdm"
	AgentEcho    = "echo"
	AgentXR      = "xr"
	AgentGeneral = "general"
)

// MapModalityToExamType maps a coarse imaging modality code plus the
// free-text procedure description to an internal exam type. The source
// reports modality as a short code (MR, CT, US, CR/DR/DX) and leaves
// anatomical specificity only in free text, so a keyword pass narrows the
// coarse code; anything unrecognized falls back to the generic "autre" type
// with the raw description as display text.
func MapModalityToExamType(modality, procedure string) ExamType {
	mod := strings.ToUpper(strings.TrimSpace(modality))
	proc := strings.ToLower(procedure)

	switch mod {
	case "MR":
		if containsAny(proc, "brain", "cérébr", "cerebr") {
			return ExamType{Key: "irm-cerebrale", Display: "IRM Cérébrale"}
		}
		return ExamType{Key: "irm-autre", Display: "IRM Autre"}
	case "CT":
		if containsAny(proc, "chest", "thorax", "thor") {
			return ExamType{Key: "tdm-thorax", Display: "TDM Thorax"}
		}
		return ExamType{Key: "tdm-autre", Display: "TDM Autre"}
	case "US":
		if containsAny(proc, "abdomen", "abdomin") {
			return ExamType{Key: "echo-abdomen", Display: "Échographie Abdomen"}
		}
		return ExamType{Key: "echo-autre", Display: "Échographie Autre"}
	case "CR", "DR", "DX":
		if containsAny(proc, "chest", "thorax", "thor") {
			return ExamType{Key: "xr-thorax", Display: "Radiographie Thorax"}
		}
		return ExamType{Key: "xr-autre", Display: "Radiographie Autre"}
	}

	display := procedure
	if display == "" {
		display = modality
	}
	if display == "" {
		display = "Examen"
	}
	return ExamType{Key: "autre", Display: display}
}

// ModalityAgent returns the terminology-retrieval filter key for an internal
// exam type key.
func ModalityAgent(examType string) string {
	switch {
	case strings.HasPrefix(examType, "irm"):
		return AgentIRM
	case strings.HasPrefix(examType, "tdm"):
		return AgentTDM
	case strings.HasPrefix(examType, "echo"):
		return AgentEcho
	case strings.HasPrefix(examType, "xr"):
		return AgentXR
	default:
		return AgentGeneral
	}
}

// ParseAge extracts the leading digit run from a DICOM age string
// ("045Y" -> 45). Returns 0 when absent or without digits; 0 is the
// "unknown" sentinel, never a valid clinical age.
func ParseAge(raw string) int {
	start := -1
	for i, r := range raw {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return atoi(raw[start:i])
		}
	}
	if start >= 0 {
		return atoi(raw[start:])
	}
	return 0
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// FormatDate converts a strict 8-digit DICOM date (YYYYMMDD) to ISO form
// (YYYY-MM-DD). Malformed input is rejected; silently substituting the
// current date would fabricate an exam date.
func FormatDate(raw string) (string, error) {
	if len(raw) != 8 || !allDigits(raw) {
		return "", errs.Validation("studyDate", fmt.Sprintf("expected 8-digit YYYYMMDD, got %q", raw))
	}
	return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8], nil
}

// FormatTime converts a DICOM time (HHMMSS...) to "HH:MM". Inputs shorter
// than 4 characters yield "".
func FormatTime(raw string) string {
	if len(raw) < 4 {
		return ""
	}
	return raw[0:2] + ":" + raw[2:4]
}

// NormalizePersonName replaces the DICOM component separator "^" with a
// space ("DOE^JANE" -> "DOE JANE").
func NormalizePersonName(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "^", " "))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
