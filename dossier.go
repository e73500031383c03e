package secop

import (
	"fmt"
	"strings"
)

// Dossier holds the evolving state of an investigation.
type Dossier struct {
	Subject        Subject
	CurrentStep    string
	Findings       string   // compressed knowledge collected so far
	Network        []string // related entities mapped by the network strategy
	Sources        []string // URLs findings were grounded on
	History        []string
	SearchCount    int
	IterationCount int
}

// NewDossier initializes a dossier for the subject, seeding the findings
// with any prior contract context.
func NewDossier(subject Subject) Dossier {
	d := Dossier{Subject: subject}
	if ctx := strings.TrimSpace(subject.Context); ctx != "" {
		d.Findings = "Contract record context (from SECOP data):\n" + ctx
	}
	return d
}

// AppendHistory adds a concise action log entry.
func (d *Dossier) AppendHistory(entry string) {
	if entry == "" {
		return
	}
	d.History = append(d.History, entry)
}

// AddSources records result URLs, deduplicating by exact match.
func (d *Dossier) AddSources(results []SearchResult) {
	seen := make(map[string]bool, len(d.Sources))
	for _, u := range d.Sources {
		seen[u] = true
	}
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		d.Sources = append(d.Sources, u)
	}
}

// Label renders the subject for prompts and log lines.
func (d Dossier) Label() string {
	if d.Subject.Document == "" {
		return d.Subject.Name
	}
	return fmt.Sprintf("%s (doc. %s)", d.Subject.Name, d.Subject.Document)
}

// Snapshot renders the dossier state for prompting.
func (d Dossier) Snapshot() string {
	var b strings.Builder
	b.WriteString("Subject: \n")
	b.WriteString(d.Label())
	b.WriteString("\n\nCurrent Step:\n")
	if d.CurrentStep == "" {
		b.WriteString("(none yet)")
	} else {
		b.WriteString(d.CurrentStep)
	}
	b.WriteString("\n\nFindings:\n")
	if strings.TrimSpace(d.Findings) == "" {
		b.WriteString("(empty)")
	} else {
		b.WriteString(d.Findings)
	}
	if len(d.Network) > 0 {
		b.WriteString("\n\nMapped network:\n")
		b.WriteString(strings.Join(d.Network, "\n"))
	}
	if len(d.History) > 0 {
		b.WriteString("\n\nHistory:\n")
		b.WriteString(strings.Join(d.History, "\n"))
	}
	b.WriteString("\n\nSearches used: ")
	b.WriteString(fmt.Sprintf("%d", d.SearchCount))
	return b.String()
}
