package graphx

import (
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// TriggerConflict is a pair of workflow entry points whose firing conditions
// can overlap for the same underlying platform event.
type TriggerConflict struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Reason string `json:"reason"`
}

// ambiguousPairs is the fixed table of trigger-type pairs known to fire for
// the same underlying event even though their types differ. Keys are
// normalized "a|b" with a < b lexically.
var ambiguousPairs = map[string]string{
	"contact_updated|tag_added":      "a tag change also fires contact-updated",
	"contact_updated|tag_removed":    "a tag change also fires contact-updated",
	"contact_created|form_submitted": "a form submission can create the contact",
	"contact_updated|form_submitted": "a form submission updates contact fields",
	"appointment|contact_updated":    "booking an appointment updates the contact",
	"inbound_message|webhook_trigger": "inbound messages are also delivered via webhook",
}

// FindTriggerConflicts compares every pair of trigger nodes. Two triggers
// conflict when they share a rawType or their type pair is in the fixed
// ambiguous table. Quadratic in trigger count; real workflows have
// single-digit trigger counts.
func FindTriggerConflicts(g *schema.CanonicalGraph) []TriggerConflict {
	triggers := g.NodesOfKind(schema.KindTrigger)

	var conflicts []TriggerConflict
	for i := 0; i < len(triggers); i++ {
		for j := i + 1; j < len(triggers); j++ {
			a, b := triggers[i], triggers[j]
			ta := strings.ToLower(a.RawType)
			tb := strings.ToLower(b.RawType)

			if ta == tb {
				conflicts = append(conflicts, TriggerConflict{
					A:      a.ID,
					B:      b.ID,
					Reason: "both triggers fire on the same event type " + ta,
				})
				continue
			}
			if reason, ok := ambiguousPairs[pairKey(ta, tb)]; ok {
				conflicts = append(conflicts, TriggerConflict{A: a.ID, B: b.ID, Reason: reason})
			}
		}
	}
	return conflicts
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
