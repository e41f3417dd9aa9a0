package themes

import "testing"

func TestCatalogHasAllThemes(t *testing.T) {
	want := []string{"minimal", "modern", "corporate", "colorful", "creative", "cosmic", "neon", "sunset"}
	if len(Keys()) != len(want) {
		t.Fatalf("expected %d themes, got %v", len(want), Keys())
	}
	for _, key := range want {
		if !Exists(key) {
			t.Fatalf("missing theme %q", key)
		}
	}
}

func TestGetFallsBackToMinimal(t *testing.T) {
	got := Get("vaporwave")
	if got.Key != FallbackKey {
		t.Fatalf("expected fallback, got %q", got.Key)
	}
}

func TestThemeValues(t *testing.T) {
	m := Get("minimal")
	if m.Name != "Minimal" || m.Fonts.Primary != "Inter" || m.Sizes.Title != 44 {
		t.Fatalf("minimal mismatch: %+v", m)
	}
	if m.Colors.Background != "FFFFFF" || m.Design.UseShadows {
		t.Fatalf("minimal mismatch: %+v", m)
	}

	n := Get("neon")
	if n.Colors.Background != "000000" || n.Sizes.Title != 52 || n.Fonts.Primary != "Orbitron" {
		t.Fatalf("neon mismatch: %+v", n)
	}
	if !n.Design.UseGradients || n.Design.Spacing != "tight" {
		t.Fatalf("neon mismatch: %+v", n)
	}
}

func TestRandomKeyIsFromCatalog(t *testing.T) {
	for i := 0; i < 50; i++ {
		if !Exists(RandomKey()) {
			t.Fatal("RandomKey returned a key outside the catalog")
		}
	}
}
