package geocoding

import "testing"

func testTown() Town {
	return Town{City: "Posadas", Region: "Córdoba", Country: "España"}
}

func TestCleanerClean(t *testing.T) {
	c := NewCleaner(testTown())

	cases := []struct {
		in   string
		want string
	}{
		{"C/ Gaitán, 12 (junto al bar)", "Calle Gaitán, 12, Posadas, Córdoba, España"},
		{"AVDA. ANDALUCIA Nº 5 2º A", "Avenida ANDALUCIA 5, Posadas, Córdoba, España"},
		{"Calle Calle Real 3 Bajo", "Calle Real 3, Posadas, Córdoba, España"},
		{"Calle Mayor S/N", "Calle Mayor s/n, Posadas, Córdoba, España"},
		{"Calle Real3", "Calle Real 3, Posadas, Córdoba, España"},
		{"Calle Garc?a Lorca 4", "Calle García Lorca 4, Posadas, Córdoba, España"},
		{"Calle Mari´a Auxiliadora 2", "Calle María Auxiliadora 2, Posadas, Córdoba, España"},
		{"Calle Sol 4 PUERTA 2", "Calle Sol 4, Posadas, Córdoba, España"},
		{"Calle Mayor 12 12", "Calle Mayor 12, Posadas, Córdoba, España"},
		{"Calle Real 3 4 4", "Calle Real 3 4, Posadas, Córdoba, España"},
		{"Calle Nueva 2 (portal", "Calle Nueva 2, Posadas, Córdoba, España"},
		{"C/ Real n 4", "Calle Real 4, Posadas, Córdoba, España"},
		{"Calle Mayor 7, posadas, cordoba", "Calle Mayor 7, posadas, cordoba, España"},
		{"  ", ""},
	}

	for _, tc := range cases {
		if got := c.Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanerStreet(t *testing.T) {
	c := NewCleaner(testTown())

	cleaned := c.Clean("C/ Gaitán, 12")
	if got := c.Street(cleaned); got != "Calle Gaitán" {
		t.Fatalf("Street = %q, want %q", got, "Calle Gaitán")
	}
	if got := c.StreetWithNumber(cleaned); got != "Calle Gaitán 12" {
		t.Fatalf("StreetWithNumber = %q, want %q", got, "Calle Gaitán 12")
	}

	noNumber := c.Clean("Calle Mayor s/n")
	if got := c.Street(noNumber); got != "Calle Mayor" {
		t.Fatalf("Street = %q, want %q", got, "Calle Mayor")
	}
}

func TestPrepareSimplified(t *testing.T) {
	c := NewCleaner(testTown())

	p := c.Prepare("Avenida Blas Infante 9")
	if p.Street != "Avenida Blas Infante" {
		t.Fatalf("street = %q", p.Street)
	}
	want := "Avenida Blas Infante, Posadas, Córdoba, España"
	if p.Simplified != want {
		t.Fatalf("simplified = %q, want %q", p.Simplified, want)
	}
}

func TestDefaultStrategiesOrderAndSkips(t *testing.T) {
	c := NewCleaner(testTown())
	strategies := DefaultStrategies(c)

	p := c.Prepare("Avenida Blas Infante 9")

	var got []string
	for _, s := range strategies {
		q, ok := s.Query(p)
		if !ok {
			continue
		}
		got = append(got, s.Name)
		if s.Name == "structured" && q.Street != "Avenida Blas Infante 9" {
			t.Fatalf("structured street = %q", q.Street)
		}
		if s.Name == "street-only-bounded" && !q.Bounded {
			t.Fatal("bounded strategy must set Bounded")
		}
		if s.Name == "short-street" && q.Text != "Calle Blas Infante, Posadas, Córdoba, España" {
			t.Fatalf("short-street text = %q", q.Text)
		}
	}

	want := []string{"free-form", "structured", "street-only", "street-only-bounded", "short-street"}
	if len(got) != len(want) {
		t.Fatalf("strategies = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strategies = %v, want %v", got, want)
		}
	}

	// A one-word street repeats no query: street-only would equal the
	// free-form text and short-street needs two words.
	bare := c.Prepare("Mercadona")
	var names []string
	for _, s := range strategies {
		if _, ok := s.Query(bare); ok {
			names = append(names, s.Name)
		}
	}
	if len(names) != 3 || names[2] != "street-only-bounded" {
		t.Fatalf("applicable strategies for bare name = %v", names)
	}
}
