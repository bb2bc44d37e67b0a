package dicom

import "testing"

func TestMapModalityToExamType(t *testing.T) {
	tests := []struct {
		modality  string
		procedure string
		key       string
		display   string
	}{
		{"MR", "cerebral angio", "irm-cerebrale", "IRM Cérébrale"},
		{"MR", "IRM cérébrale sans injection", "irm-cerebrale", "IRM Cérébrale"},
		{"MR", "knee", "irm-autre", "IRM Autre"},
		{"CT", "chest ct", "tdm-thorax", "TDM Thorax"},
		{"CT", "TDM thoracique", "tdm-thorax", "TDM Thorax"},
		{"CT", "abdomen", "tdm-autre", "TDM Autre"},
		{"US", "abdominal ultrasound", "echo-abdomen", "Échographie Abdomen"},
		{"US", "thyroid", "echo-autre", "Échographie Autre"},
		{"CR", "chest x-ray", "xr-thorax", "Radiographie Thorax"},
		{"DX", "thorax face", "xr-thorax", "Radiographie Thorax"},
		{"DR", "wrist", "xr-autre", "Radiographie Autre"},
		{"mr", "brain mri", "irm-cerebrale", "IRM Cérébrale"}, // lowercase code
		{"NM", "bone scan", "autre", "bone scan"},
		{"", "", "autre", "Examen"},
	}
	for _, tt := range tests {
		got := MapModalityToExamType(tt.modality, tt.procedure)
		if got.Key != tt.key {
			t.Errorf("MapModalityToExamType(%q, %q): expected key %q, got %q", tt.modality, tt.procedure, tt.key, got.Key)
		}
		if got.Display != tt.display {
			t.Errorf("MapModalityToExamType(%q, %q): expected display %q, got %q", tt.modality, tt.procedure, tt.display, got.Display)
		}
	}
}

func TestModalityAgent(t *testing.T) {
	tests := []struct {
		examType string
		agent    string
	}{
		{"irm-cerebrale", AgentIRM},
		{"tdm-thorax", AgentTDM},
		{"echo-abdomen", AgentEcho},
		{"xr-autre", AgentXR},
		{"autre", AgentGeneral},
	}
	for _, tt := range tests {
		if got := ModalityAgent(tt.examType); got != tt.agent {
			t.Errorf("ModalityAgent(%q): expected %q, got %q", tt.examType, tt.agent, got)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"045Y", 45},
		{"3M", 3},
		{"102Y", 102},
		{"", 0},
		{"unknown", 0},
		{"Y12", 12},
	}
	for _, tt := range tests {
		if got := ParseAge(tt.raw); got != tt.want {
			t.Errorf("ParseAge(%q): expected %d, got %d", tt.raw, tt.want, got)
		}
	}
}

func TestFormatDate(t *testing.T) {
	got, err := FormatDate("20240115")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-01-15" {
		t.Errorf("expected 2024-01-15, got %s", got)
	}
}

func TestFormatDate_Malformed(t *testing.T) {
	for _, raw := range []string{"", "2024", "202401155", "2024011a"} {
		if _, err := FormatDate(raw); err == nil {
			t.Errorf("FormatDate(%q): expected validation error", raw)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"143022", "14:30"},
		{"0905", "09:05"},
		{"14", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.raw); got != tt.want {
			t.Errorf("FormatTime(%q): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

func TestNormalizePersonName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"DOE^JANE", "DOE JANE"},
		{"MARTIN^PIERRE^JEAN", "MARTIN PIERRE JEAN"},
		{"SIMPLE", "SIMPLE"},
	}
	for _, tt := range tests {
		if got := NormalizePersonName(tt.raw); got != tt.want {
			t.Errorf("NormalizePersonName(%q): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}
