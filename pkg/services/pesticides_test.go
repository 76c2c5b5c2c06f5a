package services

import (
	"testing"

	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

func TestPesticideList(t *testing.T) {
	svc := NewPesticideService()

	all := svc.List("")
	if len(all) != len(pesticideCatalogue) {
		t.Fatalf("List(\"\") returned %d entries", len(all))
	}

	rice := svc.List(models.CropRice)
	if len(rice) == 0 {
		t.Fatal("expected rice pesticides")
	}
	for _, p := range rice {
		if !p.ForCrop(models.CropRice) {
			t.Errorf("%q not targeted at rice", p.Name)
		}
	}

	if got := svc.List("Tomato"); len(got) != 0 {
		t.Errorf("unknown crop should return empty, got %d", len(got))
	}
}
