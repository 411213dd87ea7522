package matching

// The 16 archetype codes group into 4 higher-level categories. The table is
// static domain data, injected into the Scorer so it can be tested and
// versioned on its own.

const (
	CategoryDiplomat   = "DIPLOMAT"
	CategoryStrateger  = "STRATEGER"
	CategoryByggare    = "BYGGARE"
	CategoryUpptackare = "UPPTÄCKARE"
)

// DefaultArchetypeCategories returns the archetype code to category mapping
// used in production.
func DefaultArchetypeCategories() map[string]string {
	return map[string]string{
		"INFJ": CategoryDiplomat, "INFP": CategoryDiplomat,
		"ENFJ": CategoryDiplomat, "ENFP": CategoryDiplomat,
		"INTJ": CategoryStrateger, "INTP": CategoryStrateger,
		"ENTJ": CategoryStrateger, "ENTP": CategoryStrateger,
		"ISTJ": CategoryByggare, "ISFJ": CategoryByggare,
		"ESTJ": CategoryByggare, "ESFJ": CategoryByggare,
		"ISTP": CategoryUpptackare, "ISFP": CategoryUpptackare,
		"ESTP": CategoryUpptackare, "ESFP": CategoryUpptackare,
	}
}

// categoryTitles and categoryTraits feed the user-facing match explanations.
var categoryTitles = map[string]string{
	CategoryDiplomat:   "Diplomaten",
	CategoryStrateger:  "Strategen",
	CategoryByggare:    "Byggaren",
	CategoryUpptackare: "Upptäckaren",
}

var categoryTraits = map[string]string{
	CategoryDiplomat:   "empatisk och värdesätter djupa relationer och harmoni",
	CategoryStrateger:  "analytisk och målinriktad med förmåga att se helheten",
	CategoryByggare:    "praktisk och pålitlig med stark känsla för ansvar och lojalitet",
	CategoryUpptackare: "spontan och äventyrlig med passion för nya upplevelser",
}

// complementaryInsights maps (requester category, matched category) to the
// explanation used for complementary matches.
var complementaryInsights = map[string]map[string]string{
	CategoryDiplomat: {
		CategoryStrateger:  "Din empati och värme kan mjuka upp deras analytiska sida, medan deras tydlighet kan hjälpa dig att sätta gränser.",
		CategoryByggare:    "Din känslighet för relationer och deras stabilitet skapar en trygg bas, ni kan ge varandra både djup och tillförlitlighet.",
		CategoryUpptackare: "Du bidrar med djup och närhet medan de bidrar med energi och nya perspektiv, tillsammans får ni både ro och äventyr.",
	},
	CategoryStrateger: {
		CategoryDiplomat:   "Din analytiska förmåga och deras empati kompletterar varandra, ni kan ge varandra både struktur och känslomässig förståelse.",
		CategoryByggare:    "Ni kombinerar vision med praktik: du ser helheten medan de gör saker verklighet, ett starkt team för att nå mål.",
		CategoryUpptackare: "Ditt strategiska tänkande och deras spontanitet kan balansera varandra, planering möter äventyr.",
	},
	CategoryByggare: {
		CategoryDiplomat:   "Din stabilitet ger trygghet medan de ger relationen djup och värme, ni skapar en balans mellan ordning och känsla.",
		CategoryStrateger:  "Du gör saker till verklighet medan de ser helheten, tillsammans kan ni nå långsiktiga mål med förankring i vardagen.",
		CategoryUpptackare: "Din pålitlighet och deras spontanitet, du ger grunden, de ger glädjen och de nya impulserna.",
	},
	CategoryUpptackare: {
		CategoryDiplomat:   "Din energi och deras djup, ni kan ge varandra både äventyr och meningsfulla samtal.",
		CategoryStrateger:  "Din spontanitet och deras strategiska sinne, ni kan inspirera varandra att både planera och leva i nuet.",
		CategoryByggare:    "Du bidrar med fart och nyfikenhet medan de ger stabilitet och trygghet, en balans mellan äventyr och hem.",
	},
}

// pairFactors maps (requester category, matched category) to the
// category-specific compatibility factor line.
var pairFactors = map[string]map[string]string{
	CategoryDiplomat: {
		CategoryDiplomat:   "Djup emotionell förståelse",
		CategoryStrateger:  "Kombination av känsla och logik",
		CategoryByggare:    "Stabilitet möter empati",
		CategoryUpptackare: "Kreativitet möter harmoni",
	},
	CategoryStrateger: {
		CategoryDiplomat:   "Logik balanseras med empati",
		CategoryStrateger:  "Intellektuell stimulans",
		CategoryByggare:    "Strategi möter praktik",
		CategoryUpptackare: "Vision möter spontanitet",
	},
	CategoryByggare: {
		CategoryDiplomat:   "Trygghet och omsorg",
		CategoryStrateger:  "Praktik möter strategi",
		CategoryByggare:    "Gemensam stabilitet",
		CategoryUpptackare: "Struktur möter frihet",
	},
	CategoryUpptackare: {
		CategoryDiplomat:   "Äventyr med djup",
		CategoryStrateger:  "Spontanitet möter planering",
		CategoryByggare:    "Frihet med trygghet",
		CategoryUpptackare: "Dubbel äventyrslust",
	},
}
