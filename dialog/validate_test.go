package dialog

import "testing"

func TestValidateRatingBounds(t *testing.T) {
	rejected := map[string]string{
		"0":   "Rating must be between 1 and 5",
		"6":   "Rating must be between 1 and 5",
		"abc": "Rating must be a number",
		"":    "Rating must be a number",
	}
	for input, wantMsg := range rejected {
		err := ValidateRating(input)
		if err == nil {
			t.Errorf("ValidateRating(%q) = nil, want error", input)
			continue
		}
		if err.Error() != wantMsg {
			t.Errorf("ValidateRating(%q) = %q, want %q", input, err.Error(), wantMsg)
		}
	}
	for _, input := range []string{"1", "2", "3", "4", "5"} {
		if err := ValidateRating(input); err != nil {
			t.Errorf("ValidateRating(%q) = %v, want nil", input, err)
		}
	}
}

func TestValidateYearBounds(t *testing.T) {
	for _, input := range []string{"1899", "2101", "abc", ""} {
		if err := ValidateYear(input); err == nil {
			t.Errorf("ValidateYear(%q) = nil, want error", input)
		}
	}
	for _, input := range []string{"1900", "1979", "2100"} {
		if err := ValidateYear(input); err != nil {
			t.Errorf("ValidateYear(%q) = %v, want nil", input, err)
		}
	}
}

func TestValidateNonEmpty(t *testing.T) {
	if err := ValidateNonEmpty("   "); err == nil {
		t.Error("blank input should be rejected")
	}
	if err := ValidateNonEmpty("Dune"); err != nil {
		t.Errorf("non-empty input rejected: %v", err)
	}
}

func TestValidationFailureLeavesStateUnchanged(t *testing.T) {
	inst := NewInstance(Specs()[TypeBook])
	inst.Step(Start())
	inst.Step(TextProvided("Dune"))
	inst.Step(TextProvided("Herbert"))
	atRating := inst.State()

	for _, bad := range []string{"0", "6", "abc"} {
		out := inst.Step(TextProvided(bad))
		if out.Result != nil {
			t.Fatalf("invalid rating %q produced a result", bad)
		}
		if out.Message == "" {
			t.Fatalf("invalid rating %q produced no re-prompt", bad)
		}
		if got := inst.State(); got.Step != atRating.Step {
			t.Fatalf("state advanced on invalid rating %q: %+v", bad, got)
		}
	}

	out := inst.Step(TextProvided("5"))
	if out.Result == nil || out.Result.Book == nil {
		t.Fatalf("valid rating did not complete the dialog: %+v", out)
	}
}
