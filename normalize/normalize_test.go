package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase cyrillic", "Аспирин", "аспирин"},
		{"registration mark", "Аспирин®", "аспирин"},
		{"trademark and copyright", "Бравекто™ ©", "бравекто"},
		{"ampersand becomes и", "Merck & Co", "merckиco"},
		{"whitespace and hyphens", "Ивер- мек 1 %", "ивермек1"},
		{"punctuation stripped", "Фронтлайн (спрей), 100 мл.", "фронтлайнспрей100мл"},
		{"latin kis transliteration", "Салициловая kisлота", "салициловаякислота"},
		{"mixed kis transliteration", "Аскорбиновая kиsлота", "аскорбиноваякислота"},
		{"kis joined by stripping", "k.is", "кис"},
		{"yo is kept", "Ёж", "ёж"},
		{"decomposed й composes", "Май", "май"},
		{"only symbols", "!!! ---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.input); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"Аспирин®",
		"Merck & Co",
		"K I S",
		"k.is",
		"kкis",
		"kиkis",
		"Дирофен-плюс 10 табл.",
		"Amoxicillin/Clavulanic acid (Синулокс)",
		"   ",
	}

	for _, in := range inputs {
		once := Key(in)
		if twice := Key(once); twice != once {
			t.Errorf("Key not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestKeyCaseAndMarkInsensitive(t *testing.T) {
	if Key("Drug®") != Key("drug") {
		t.Errorf("Key(%q) = %q, Key(%q) = %q", "Drug®", Key("Drug®"), "drug", Key("drug"))
	}
	if Key("СИНУЛОКС") != Key("синулокс") {
		t.Error("Key should be case-insensitive for cyrillic")
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		want     bool
	}{
		{"Аспирин® 500 мг", "аспирин", true},
		{"Аспирин", "аспирин 500", false},
		{"Ивермек-ТО", "ивермек то", true},
		{"anything", "", true},
	}

	for _, tt := range tests {
		if got := Contains(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("Contains(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}
