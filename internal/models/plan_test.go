package models

import "testing"

func TestPlanStatusValid(t *testing.T) {
	for _, s := range []PlanStatus{PlanDraft, PlanFinalized, PlanCompleted, PlanCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []PlanStatus{"", "Draft", "archived"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestPlanUpdateIsEmpty(t *testing.T) {
	if !(PlanUpdate{}).IsEmpty() {
		t.Error("zero update should be empty")
	}

	name := "Saturday"
	if (PlanUpdate{Name: &name}).IsEmpty() {
		t.Error("update with name should not be empty")
	}
	if (PlanUpdate{ClearPreset: true}).IsEmpty() {
		t.Error("ClearPreset alone should not be empty")
	}
	bands := []string{}
	if (PlanUpdate{Bands: &bands}).IsEmpty() {
		t.Error("update clearing bands should not be empty")
	}
}

func TestEquipmentPresetWithFallbacks(t *testing.T) {
	got := EquipmentPreset{Name: "Bare"}.WithFallbacks()
	if got.Radio != FallbackRadio || got.Antenna != FallbackAntenna {
		t.Errorf("radio/antenna = %q/%q", got.Radio, got.Antenna)
	}
	if got.PowerWatts != FallbackPowerWatts {
		t.Errorf("PowerWatts = %d, want %d", got.PowerWatts, FallbackPowerWatts)
	}
	if got.Mode != FallbackMode {
		t.Errorf("Mode = %q, want %q", got.Mode, FallbackMode)
	}

	full := EquipmentPreset{Radio: "KX2", Antenna: "EFHW", PowerWatts: 10, Mode: "CW"}
	if full.WithFallbacks() != full {
		t.Error("populated preset should be unchanged")
	}
}
