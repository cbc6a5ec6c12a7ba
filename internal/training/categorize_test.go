package training

import "testing"

func TestCategorizeMilestone(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"First Bath", "grooming"},
		{"  first vet visit ", "health"},
		{"Second round of vaccinations", "health"},
		{"Walks nicely on leash", "training"},
		{"Met other dogs at the park", "socialization"},
		{"Climbs stairs", "physical"},
		{"Learned to open the fridge", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		if got := CategorizeMilestone(tt.title); got != tt.want {
			t.Errorf("CategorizeMilestone(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
