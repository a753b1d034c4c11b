package comparison

import (
	"sort"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
	"github.com/gilchrisn/reaction-network-analysis/pkg/network"
)

// DefaultImportantMolecules are platform chemicals of lignocellulose biorefining
// checked against a comparison dataset. The list is kept as curated, duplicate included.
var DefaultImportantMolecules = []string{
	"2-methoxy-phenol",
	"formic acid",
	"methanol",
	"syringic aldehyde",
	"carbon dioxide",
	"1-(4-hydroxy-3,5-dimethoxyphenyl)-2-(2'-methoxyphenoxy)-1,3-propanediol",
	"5-hydroxymethyl-2-furfuraldehyde",
	"methanol",
	"levulinic acid",
	"furfural",
	"vanillin",
}

// Jaccard returns |A n B| / |A u B| over the distinct molecules of a and b.
// The similarity of an empty set is undefined.
func Jaccard(a, b []string) (float64, error) {
	setA, setB := toSet(a), toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0, models.ValidationError{Field: "molecules", Row: -1, Message: "similarity undefined for an empty molecule set"}
	}

	common := 0
	for m := range setA {
		if setB[m] {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return float64(common) / float64(union), nil
}

// Report describes the overlap of two reaction networks
type Report struct {
	Jaccard         float64  `json:"jaccard"`
	Common          []string `json:"common"` // sorted
	OnlyFirst       int      `json:"only_first"`
	OnlySecond      int      `json:"only_second"`
	PercentOfSecond float64  `json:"percent_of_second"` // share of the second network's molecules that are common
	Present         []string `json:"present"`           // important molecules found in both networks
	Missing         []string `json:"missing"`           // important molecules absent from the overlap
}

// Compare reports the molecule overlap of a and b and checks each important molecule
// against the common set. Matching is exact and case-sensitive; important molecules
// keep their given order and are reported once.
func Compare(a, b *network.ReactionNetwork, important []string) (*Report, error) {
	first, second := a.Molecules(), b.Molecules()
	j, err := Jaccard(first, second)
	if err != nil {
		return nil, err
	}

	setB := toSet(second)
	report := &Report{
		Jaccard: j,
		Common:  make([]string, 0),
		Present: make([]string, 0),
		Missing: make([]string, 0),
	}
	for _, m := range first {
		if setB[m] {
			report.Common = append(report.Common, m)
		}
	}
	sort.Strings(report.Common)
	report.OnlyFirst = len(first) - len(report.Common)
	report.OnlySecond = len(second) - len(report.Common)
	report.PercentOfSecond = 100 * float64(len(report.Common)) / float64(len(second))

	common := toSet(report.Common)
	seen := make(map[string]bool, len(important))
	for _, m := range important {
		if seen[m] {
			continue
		}
		seen[m] = true
		if common[m] {
			report.Present = append(report.Present, m)
		} else {
			report.Missing = append(report.Missing, m)
		}
	}
	return report, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
