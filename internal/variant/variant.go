// Package variant defines the canonical print-variant taxonomy and the
// mapping between raw stored variant codes and UI variants.
//
// Storage has accumulated several spellings for the same print finish
// (importer versions, legacy rows). Every read path must normalize through
// this package so the taxonomy cannot drift between call sites.
package variant

import "strings"

// UIVariant is a canonical print variant exposed to API consumers.
type UIVariant string

const (
	Normal           UIVariant = "normal"
	Holo             UIVariant = "holo"
	ReverseHolo      UIVariant = "reverseHolo"
	FirstEdition     UIVariant = "firstEdition"
	FirstEditionHolo UIVariant = "firstEditionHolo"
)

// All returns every UI variant in presentation order.
func All() []UIVariant {
	return []UIVariant{Normal, Holo, ReverseHolo, FirstEdition, FirstEditionHolo}
}

// storedToUI maps every known stored variant code to its UI variant.
// Multiple stored codes may collapse to the same UI variant; codes absent
// from this table have no UI equivalent and are dropped by readers.
var storedToUI = map[string]UIVariant{
	"normal":                 Normal,
	"unlimited":              Normal,
	"holo":                   Holo,
	"holofoil":               Holo,
	"unlimited_holofoil":     Holo,
	"reverse_holo":           ReverseHolo,
	"reverse_holofoil":       ReverseHolo,
	"reverse":                ReverseHolo,
	"1st_edition":            FirstEdition,
	"first_edition":          FirstEdition,
	"1st_edition_holofoil":   FirstEditionHolo,
	"first_edition_holo":     FirstEditionHolo,
	"first_edition_holofoil": FirstEditionHolo,
}

// uiToStored holds the canonical stored code for each UI variant, used when
// storage must be written or filtered by UI variant.
var uiToStored = map[UIVariant]string{
	Normal:           "normal",
	Holo:             "holofoil",
	ReverseHolo:      "reverse_holofoil",
	FirstEdition:     "1st_edition",
	FirstEditionHolo: "1st_edition_holofoil",
}

func init() {
	// Every canonical stored code must round-trip to its own UI variant,
	// otherwise the two tables have drifted apart.
	for v, code := range uiToStored {
		mapped, ok := storedToUI[code]
		if !ok || mapped != v {
			panic("variant: canonical stored code " + code + " does not round-trip")
		}
	}
}

// ToUIVariant translates a stored variant code into its UI variant.
// The second return value is false when the code has no UI equivalent;
// unknown codes are never an error.
func ToUIVariant(code string) (UIVariant, bool) {
	v, ok := storedToUI[strings.ToLower(strings.TrimSpace(code))]
	return v, ok
}

// ToStoredCode returns the canonical stored code for a UI variant. It fails
// closed: an unrecognized variant yields ok=false rather than a guess.
func ToStoredCode(v UIVariant) (string, bool) {
	code, ok := uiToStored[v]
	return code, ok
}
