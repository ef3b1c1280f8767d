package diagram

import (
	"fmt"
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// RenderMermaid renders a Model as a Mermaid flowchart string.
func RenderMermaid(m *Model) string {
	var b strings.Builder

	b.WriteString("graph TD\n")

	if m.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", m.Title))
	}

	for _, node := range m.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	for _, edge := range m.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n",
			mermaidSafeID(edge.From), label, mermaidSafeID(edge.To)))
	}

	// Severity class definitions.
	b.WriteString("\n")
	b.WriteString("    classDef critical fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef high fill:#b7791a,stroke:#8a5c14,color:#fff\n")
	b.WriteString("    classDef medium fill:#b7a21a,stroke:#8a7a14,color:#000\n")
	b.WriteString("    classDef low fill:#1a5276,stroke:#0e3a52,color:#fff\n")

	for _, node := range m.Nodes {
		if node.Severity != "" {
			b.WriteString(fmt.Sprintf("    class %s %s\n",
				mermaidSafeID(node.ID), string(node.Severity)))
		}
	}

	return b.String()
}

// mermaidNodeDef renders a node with a shape matching its kind:
// stadium for triggers, diamond for conditions, parallelogram for delays,
// rectangle for actions.
func mermaidNodeDef(node *Node) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscape(node.Label)

	switch node.Kind {
	case schema.KindTrigger:
		return fmt.Sprintf("%s([\"%s\"])", id, label)
	case schema.KindCondition:
		return fmt.Sprintf("%s{\"%s\"}", id, label)
	case schema.KindDelay:
		return fmt.Sprintf("%s[/\"%s\"/]", id, label)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, label)
	}
}

// mermaidSafeID replaces characters Mermaid treats as syntax.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(" ", "_", "-", "_", ".", "_", ":", "_")
	return r.Replace(id)
}

// mermaidEscape sanitizes label text for quoted Mermaid strings.
func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
