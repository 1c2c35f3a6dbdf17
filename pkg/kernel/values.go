package kernel

// Language is the ISO-639-1 code used for prompt and answer generation
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguagePortuguese Language = "pt"
)

// IsValid checks that the language is one of the supported codes
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageSpanish, LanguagePortuguese:
		return true
	default:
		return false
	}
}

// OrDefault falls back to English for unsupported or empty codes
func (l Language) OrDefault() Language {
	if l.IsValid() {
		return l
	}
	return LanguageEnglish
}

func (l Language) String() string { return string(l) }

// GetDisplayName retorna el nombre legible del idioma
func (l Language) GetDisplayName() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageSpanish:
		return "Español"
	case LanguagePortuguese:
		return "Português"
	default:
		return "Unknown"
	}
}

type Embedding []float32

// IsZero reports whether every component of the vector is zero
func (e Embedding) IsZero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}
