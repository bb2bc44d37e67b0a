package errs

import (
	"strings"
	"testing"
)

func TestTransitionErrorMessage(t *testing.T) {
	withReason := &TransitionError{From: "draft", To: "signed", Reason: "signedBy is required"}
	if got := withReason.Error(); got != "transition draft -> signed: signedBy is required" {
		t.Errorf("unexpected message: %q", got)
	}

	withoutReason := &TransitionError{From: "draft", To: "signed"}
	got := withoutReason.Error()
	if got != "transition draft -> signed" {
		t.Errorf("unexpected message: %q", got)
	}
	if strings.HasSuffix(got, ":") || strings.HasSuffix(got, ": ") {
		t.Errorf("message must not end with a dangling separator: %q", got)
	}
}

func TestUniquenessErrorMessage(t *testing.T) {
	ue := &UniquenessError{Field: "accessionNumber", Value: "ACC1", ConflictID: "report_abc"}
	if !strings.Contains(ue.Error(), "report_abc") {
		t.Errorf("expected conflict id in message, got %q", ue.Error())
	}

	anon := &UniquenessError{Field: "name", Value: "IRM standard"}
	if strings.Contains(anon.Error(), "by ") {
		t.Errorf("expected no conflict reference, got %q", anon.Error())
	}
}
